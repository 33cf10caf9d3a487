// Package service provides the device capability provider registry.
//
// Providers expose native device facilities (file transfer, local
// notifications, app parameters) as named tools. The bridge router and
// the HTTP surface route tool invocations through the registry, which
// owns provider lookup and execution.
//
// Features:
//   - Thread-safe provider registration and lookup
//   - Tool execution routed by "service.tool" identifiers
//   - Category-filtered listing for introspection
//
// Example:
//
//	registry := service.NewRegistry()
//	registry.Register(transfer.NewProvider(dir, logger))
//	result, err := registry.Execute(ctx, "transfer.save", params, appCtx)
package service
