package settings

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/raushankrgupta/product-page-generator/models"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:"

// ErrSealed is returned when a sealed token is read without the right secret
var ErrSealed = errors.New("stored API token is sealed and cannot be opened with the configured secret")

// FileStore keeps settings in a JSON file. With a secret the API token is sealed at rest.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
}

func NewFileStore(path, secret string) *FileStore {
	fs := &FileStore{path: path}
	if secret != "" {
		key := sha256.Sum256([]byte(secret))
		fs.key = &key
	}
	return fs
}

// Load returns empty settings when the file does not exist yet
func (f *FileStore) Load(context.Context) (models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Settings{}, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s models.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if strings.HasPrefix(s.APIToken, sealedPrefix) {
		token, err := f.open(strings.TrimPrefix(s.APIToken, sealedPrefix))
		if err != nil {
			return models.Settings{}, err
		}
		s.APIToken = token
	}
	return s, nil
}

// Save writes to a temporary file and renames it over the old one
func (f *FileStore) Save(_ context.Context, s models.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.key != nil && s.APIToken != "" {
		sealed, err := f.seal(s.APIToken)
		if err != nil {
			return err
		}
		s.APIToken = sealedPrefix + sealed
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, f.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (f *FileStore) open(encoded string) (string, error) {
	if f.key == nil {
		return "", ErrSealed
	}
	box, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(box) < 24 {
		return "", ErrSealed
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, f.key)
	if !ok {
		return "", ErrSealed
	}
	return string(plain), nil
}
