// Package providers contains the device capability providers exposed
// through the service registry: file transfer, local notifications, and
// app parameters. Each provider lives in its own subpackage and
// implements the service.Provider contract.
package providers
