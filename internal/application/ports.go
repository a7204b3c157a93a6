package application

// PasswordHasher hashes and verifies passwords. Verify must compare in constant time.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}
