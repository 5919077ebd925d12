// Package resource tracks native resource handles and their ownership.
//
// Every native resource the library allocates (environment, error handle,
// service context, statement, bind and define areas, cursors, descriptors,
// LOB locators) is registered here together with the handle that owns it.
// The registry enforces the one rule the native layer cannot: a child is
// always released before its parent.
//
// # Handles
//
// A Handle carries a slot index and a generation. Releasing a handle bumps
// its slot generation, so a stale handle never resolves to a newer resource
// that reused the slot:
//
//	reg := resource.NewRegistry(0)
//	env, _ := reg.Acquire(resource.KindEnv, 0, envRes)
//	stmt, _ := reg.Acquire(resource.KindStatement, env, stmtRes)
//
//	reg.Release(env)  // releases stmt, then env
//	reg.Alive(stmt)   // false
//	reg.Release(stmt) // lifetime error
//
// # Scopes
//
// Operations that allocate several related handles use a Scope so a failure
// on the last allocation releases the earlier ones:
//
//	sc := reg.Scope()
//	defer sc.Rollback()
//	...
//	sc.Commit()
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	reg.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventAcquired:
//	        log.Printf("%s %s acquired", e.Kind, e.Handle)
//	    case resource.EventReleased:
//	        log.Printf("%s %s released", e.Kind, e.Handle)
//	    }
//	}))
//
// Close releases everything and refuses further acquisitions.
package resource
