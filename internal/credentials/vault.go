package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
)

// vault is the on-disk form of a FileStore
type vault struct {
	Version int    `json:"version"` // Vault format version
	Salt    []byte `json:"salt"`    // Salt for key derivation (32 bytes)
	Nonce   []byte `json:"nonce"`   // Nonce for AES-GCM (12 bytes)
	Data    []byte `json:"data"`    // Encrypted JSON map of environment to API key
}

const (
	// Argon2id parameters (recommended by OWASP)
	argon2Time      = 3         // Number of iterations
	argon2Memory    = 64 * 1024 // Memory in KiB (64 MB)
	argon2Threads   = 4         // Number of threads
	argon2KeyLength = 32        // Output key length (256 bits for AES-256)

	saltSize  = 32 // 256 bits
	nonceSize = 12 // 96 bits (standard for AES-GCM)

	vaultVersion = 1
)

// deriveKey derives an encryption key from a passphrase using Argon2id
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLength,
	)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %v", err)
	}
	return gcm, nil
}

func sealVault(passphrase string, keys map[string]string) (*vault, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %v", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %v", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %v", err)
	}

	return &vault{
		Version: vaultVersion,
		Salt:    salt,
		Nonce:   nonce,
		Data:    gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

func openVault(v *vault, passphrase string) (map[string]string, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	if v.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported credentials file version: %d", v.Version)
	}
	if len(v.Salt) != saltSize {
		return nil, fmt.Errorf("invalid salt size: %d", len(v.Salt))
	}
	if len(v.Nonce) != nonceSize {
		return nil, fmt.Errorf("invalid nonce size: %d", len(v.Nonce))
	}

	gcm, err := newGCM(passphrase, v.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, v.Nonce, v.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
	}

	keys := map[string]string{}
	if err := json.Unmarshal(plaintext, &keys); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %v", err)
	}
	return keys, nil
}

// FileStore keeps API keys in a passphrase-encrypted file, for hosts without
// an OS keyring.
type FileStore struct {
	path       string
	passphrase func() (string, error)
	mu         sync.Mutex
}

// NewFileStore creates a store at path. passphrase is called at most once per
// operation, only when the file has to be read or written.
func NewFileStore(path string, passphrase func() (string, error)) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (fs *FileStore) load(passphrase string) (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %v", err)
	}

	var v vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials file: %v", err)
	}
	return openVault(&v, passphrase)
}

func (fs *FileStore) save(passphrase string, keys map[string]string) error {
	v, err := sealVault(passphrase, keys)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials file: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0700); err != nil {
		return err
	}
	// Only owner can read/write
	if err := os.WriteFile(fs.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %v", err)
	}
	return nil
}

func (fs *FileStore) Get(environment string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Stat(fs.path); errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}

	passphrase, err := fs.passphrase()
	if err != nil {
		return "", err
	}
	keys, err := fs.load(passphrase)
	if err != nil {
		return "", err
	}
	key, ok := keys[environment]
	if !ok {
		return "", ErrNotFound
	}
	return key, nil
}

func (fs *FileStore) Set(environment, apiKey string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	passphrase, err := fs.passphrase()
	if err != nil {
		return err
	}
	keys, err := fs.load(passphrase)
	if err != nil {
		return err
	}
	keys[environment] = apiKey
	return fs.save(passphrase, keys)
}

func (fs *FileStore) Delete(environment string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Stat(fs.path); errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}

	passphrase, err := fs.passphrase()
	if err != nil {
		return err
	}
	keys, err := fs.load(passphrase)
	if err != nil {
		return err
	}
	if _, ok := keys[environment]; !ok {
		return ErrNotFound
	}
	delete(keys, environment)

	if len(keys) == 0 {
		return os.Remove(fs.path)
	}
	return fs.save(passphrase, keys)
}
