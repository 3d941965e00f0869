package ports

// SecurityPort defines the interface for encrypting and decrypting sensitive data.
type SecurityPort interface {
	// Encrypt takes a plaintext and returns a secure, encrypted ciphertext.
	Encrypt(plaintext []byte) (ciphertext []byte, err error)

	// Decrypt takes a ciphertext and returns the original plaintext.
	Decrypt(ciphertext []byte) (plaintext []byte, err error)

	// EncryptString encrypts and base64-encodes a value for a text column.
	EncryptString(plaintext string) (string, error)

	// DecryptString reverses EncryptString.
	DecryptString(encoded string) (string, error)
}
