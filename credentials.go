package authcache

import "fmt"

// BasicCredentials is a username and password pair. It is comparable and
// hashable, making it suitable as the credential key of a
// CachingAuthenticator.
type BasicCredentials struct {
	Username string
	Password string
}

// String renders the credentials with the password redacted, so the value is
// safe to log.
func (c BasicCredentials) String() string {
	return fmt.Sprintf("BasicCredentials{username=%s, password=**********}", c.Username)
}
