/*
Package authsdk provides a client SDK for the EMSDesk authentication service.

# Overview

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations and creates authenticated sessions
  - Session: Provides authenticated operations with automatic token refresh

Create an SDKClient to interact with public endpoints and initiate authentication flows:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Register a new account
	profile, err := client.Register(ctx, authsdk.RegisterRequest{...})

	// Authenticate to create a session
	session, err := client.Login(ctx, "jdoe", "", password)

Use a Session for authenticated operations. Sessions automatically handle token
expiration and refresh:

	status, err := session.MFAStatus(ctx)
	err = session.ChangePassword(ctx, oldPassword, "", newPassword)
	err = session.Logout(ctx)

# Two-Factor Login

When an account has verified TOTP, Login returns *MFARequiredError instead of a
session. Complete the login with the partial refresh token and a code from the
authenticator app:

	session, err := client.Login(ctx, "jdoe", "", password)
	if mfaErr, ok := err.(*authsdk.MFARequiredError); ok {
		session, err = client.ValidateLoginOTP(ctx, mfaErr.RefreshToken, totpCode)
	}

# Automatic Token Refresh

Sessions refresh access tokens when they expire. The expiry is read from the
token itself, with a 30-second buffer so requests never race the deadline.

# Error Handling

Server-side failures come back as *APIError carrying the HTTP status, the
message from the error envelope, and any field or validation details.

# Thread Safety

Sessions are safe for concurrent use. All Session methods use read/write locks
to protect token state.
*/
package authsdk
