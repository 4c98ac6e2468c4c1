// Package fulfillment coordinates orders, deliveries and drivers from the
// moment an order can be dispatched until its delivery ends.
//
// The package includes:
//   - GeoIndex: finds available drivers around a dispatch origin
//   - DispatchEngine: reserves, claims, releases and reassigns drivers
//   - DeliveryStateMachine / OrderStateMachine: validate transitions and
//     describe their side effects and notifications
//   - ConsistencyEnforcer: keeps the order/delivery status pair inside the
//     pairing table by updating both entities in one unit of work
//   - Orchestrator: the public operations, each a single unit of work whose
//     notifications are enqueued only after commit
//
// Request flow:
//
//	request -> Orchestrator -> Begin -> state machine -> ConsistencyEnforcer
//	        (delivery first, then order) -> driver effects -> Commit
//	        -> notifications -> result
//
// Every mutation is a conditional write. Losing writers receive
// errs.ConflictError; dispatch retries lost driver claims on the next candidate.
package fulfillment
