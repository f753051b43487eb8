package subscription

import (
	"context"

	"github.com/physiokit/physiokit/pkg/statemachine"
)

// Lifecycle events. Status changes go through the machine so an illegal
// transition aborts the surrounding write instead of persisting a
// contradictory row.
const (
	eventSelectPlan = statemachine.StringEvent("select_plan") // paid plan chosen while trial still runs
	eventActivate   = statemachine.StringEvent("activate")    // paid period takes effect now
	eventExpire     = statemachine.StringEvent("expire")      // no window current anymore
	eventCancel     = statemachine.StringEvent("cancel")      // explicit cancellation
)

func state(s Status) statemachine.StringState {
	return statemachine.StringState(s)
}

// newLifecycle builds the subscription status machine:
//
//	trialing --select_plan--> trialing   (leftover trial days preserved)
//	trialing --activate----> active
//	active   --activate----> active      (window replacement on upgrade)
//	expired  --activate----> active      (re-activation)
//	canceled --activate----> active      (re-activation via fresh upgrade)
//	trialing --expire------> expired
//	active   --expire------> expired
//	trialing --cancel------> canceled
//	active   --cancel------> canceled
//	expired  --cancel------> canceled
//
// canceled and expired have no outgoing transitions other than activate,
// which only a fresh upgrade fires.
func newLifecycle() *statemachine.Machine {
	m := statemachine.New()

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(m.AddTransition(state(StatusTrialing), state(StatusTrialing), eventSelectPlan))
	must(m.AddTransition(state(StatusTrialing), state(StatusActive), eventActivate))
	must(m.AddTransition(state(StatusActive), state(StatusActive), eventActivate))
	must(m.AddTransition(state(StatusExpired), state(StatusActive), eventActivate))
	must(m.AddTransition(state(StatusCanceled), state(StatusActive), eventActivate))

	must(m.AddTransition(state(StatusTrialing), state(StatusExpired), eventExpire))
	must(m.AddTransition(state(StatusActive), state(StatusExpired), eventExpire))

	must(m.AddTransition(state(StatusTrialing), state(StatusCanceled), eventCancel))
	must(m.AddTransition(state(StatusActive), state(StatusCanceled), eventCancel))
	must(m.AddTransition(state(StatusExpired), state(StatusCanceled), eventCancel))

	return m
}

// fire resolves the next status for the event from the current one.
func fire(ctx context.Context, m *statemachine.Machine, current Status, event statemachine.StringEvent) (Status, error) {
	next, err := m.Fire(ctx, state(current), event, nil)
	if err != nil {
		return current, err
	}
	return Status(next.Name()), nil
}
