package credentials

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrStoreCorrupted = errors.New("credential store could not be decrypted")

const nonceSize = 24

// Record is the flat credential record persisted on disk. Field names match
// the persisted keys; user_name holds the login username until a profile
// fetch overwrites it with the display name.
type Record struct {
	Token     string `json:"auth_token,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
	Email     string `json:"user_email,omitempty"`
	Name      string `json:"user_name,omitempty"`
	Phone     string `json:"user_phone,omitempty"`
	Address   string `json:"user_address,omitempty"`
	BirthDate string `json:"user_birth_date,omitempty"`
	PhotoURL  string `json:"user_photo_url,omitempty"`
}

// FileStore persists the record as a single secretbox-sealed file. The
// session manager is the only writer; reads are safe concurrently. Writes
// go through a temp file and rename so a cancelled write never leaves a
// partial record behind.
type FileStore struct {
	mu   sync.RWMutex
	path string
	key  [32]byte
}

func NewFileStore(path string, key [32]byte) *FileStore {
	return &FileStore{path: path, key: key}
}

// Load returns the persisted record, or an empty one when nothing has been
// saved yet.
func (s *FileStore) Load() (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) load() (*Record, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{}, nil
		}
		return nil, err
	}
	if len(sealed) < nonceSize {
		return nil, ErrStoreCorrupted
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrStoreCorrupted
	}

	var record Record
	if err := json.Unmarshal(plain, &record); err != nil {
		return nil, ErrStoreCorrupted
	}
	return &record, nil
}

func (s *FileStore) save(record *Record) error {
	plain, err := json.Marshal(record)
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("could not generate nonce: %v", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Token returns the persisted auth token, empty when not logged in.
func (s *FileStore) Token() (string, error) {
	record, err := s.Load()
	if err != nil {
		return "", err
	}
	return record.Token, nil
}

// SaveSession persists the identity fields captured at login. Profile
// fields already present survive.
func (s *FileStore) SaveSession(token string, userID int64, email, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load()
	if err != nil {
		record = &Record{}
	}
	record.Token = token
	record.UserID = userID
	record.Email = email
	record.Name = username
	return s.save(record)
}

// SaveProfile overwrites the profile extension fields with the ones the
// backend returned.
func (s *FileStore) SaveProfile(name, phone, address, birthDate, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load()
	if err != nil {
		return err
	}
	if name != "" {
		record.Name = name
	}
	record.Phone = phone
	record.Address = address
	record.BirthDate = birthDate
	record.PhotoURL = photoURL
	return s.save(record)
}

// Clear removes every persisted key at once.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
