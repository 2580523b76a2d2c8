// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - GET /occupations?room_id={id}, POST /occupations, GET /occupations/{id},
//     DELETE /occupations/{id}: occupation management endpoints exchanging the
//     `occupationDTO` payload defined in occupation_handler.go. Creation runs
//     the conflict check and answers 409 with the conflicting occupation when
//     the room is already booked.
//   - POST /occupations/check: dry-run conflict check. Accepts the same body
//     as POST /occupations and reports whether it could be booked without
//     writing anything.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id},
//     DELETE /rooms/{id}: room catalog endpoints exchanging the `roomDTO`
//     payload defined in room_handler.go.
//   - GET /rooms/occupied?date={date}&time={time}: rooms occupied at the given
//     instant, each paired with the occupation holding it.
//   - GET /rooms/{id}/occupation?date={date}&time={time}: whether one room is
//     occupied at the given instant. Both occupancy endpoints default to the
//     current date and time when the parameters are omitted.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
