// Package skillsprint is the client side of the SkillSprint coding challenge
// platform: session handling, the API transport, and route guards.
//
// Session:
//   - Auther owns the current Session. It is rebuilt from the Store once at
//     startup (Init), replaced on Login and torn down on Logout or when the
//     backend answers 401. Role and username fall back to the token claims
//     and then to USER / "User".
//   - Token claims are read with DecodeClaims without verifying the
//     signature. They are a display convenience, the backend enforces trust.
//
// Transport:
//   - Client attaches the bearer token read from the Store at send time and
//     applies one failure policy to every response: 401 expires the session
//     and hard redirects to /login, 403, 5xx and network failures notify the
//     user. Every failure is still returned to the caller.
//
// Guards:
//   - RequireAuth and RequireAdmin gate the routes in DefaultRoutes. Router
//     re-evaluates them on every navigation.
package skillsprint
