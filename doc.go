// Package authd is the authentication and session-trust subsystem for
// the gamecrate platform: issuance and verification of bearer session
// tokens, password and Google OAuth login, sliding session refresh,
// logout, and double-submit-cookie CSRF defense.
//
// # Architecture
//
// The package is request-scoped and stateless between requests. Session
// tokens are self-contained signed assertions of {subject, expiry};
// there is no server-side session table and no revocation list. The
// pieces compose as:
//
//   - TokenCodec signs and verifies session tokens (HMAC, typed claims).
//   - CSRFGuard mints and validates nonce/signature pairs.
//   - SessionManager orchestrates login, refresh, verify, logout and
//     current-principal resolution against a PrincipalStore.
//   - oauth2.Provider implementations perform the authorization-code
//     exchange with external identity providers.
//   - Auth mounts everything as HTTP routes under /auth.
//
// # Usage
//
//	cfg, err := authd.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	auth := authd.New(cfg, store, oauth2.NewGoogle(id, secret, redirect))
//	http.ListenAndServe(cfg.Addr, auth.Handler())
//
// Downstream services resolve the caller with
// SessionManager.ExtractPrincipal or RequirePrincipal middleware, or by
// calling GET /auth/verify.
package authd
