/*
Package resilience provides a circuit breaker for the platform conduit.

The native call facility occasionally wedges after process relaunches;
without a breaker every present attempt pays the full setup-and-retry
cost against a facility that keeps failing. The breaker fails those
attempts fast, and the call engine translates the fast failure into its
normal presentation-failure path.

# States

  - Closed: normal operation, commands pass through
  - Open: facility considered down, commands fail immediately
  - Half-Open: probing recovery, limited commands allowed

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[success]-> Closed

# Usage

	breaker := resilience.New("callkit", resilience.Settings{
		TripAfter: 5,
		Cooldown:  30 * time.Second,
	})

	err := breaker.Execute(func() error {
		return conduit.Dispatch(ctx, cmd)
	})
*/
package resilience
