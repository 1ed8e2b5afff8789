// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

The match curation console is protected by an HMAC-SHA256 admin key:

	adminKey := auth.GenerateAdminKey(auth.AdminRealm, salt)
	err := auth.ValidateAdminKey(auth.AdminRealm, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same realm and salt always produce the same key, so it never needs to be
stored.

# User Tokens

Users receive an HS256 JWT when they create a profile:

	token, err := auth.IssueUserToken(userID, secret, auth.DefaultTokenTTL)
	userID, err := auth.ParseUserToken(token, secret)

Tokens carry the user id as the subject and must have an expiry. Any parse
or validation failure is reported as ErrInvalidToken.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
