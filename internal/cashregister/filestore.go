package cashregister

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"almacen-backend/internal/models"
)

// FileStore guarda la sesión de caja en un archivo JSON. Todas las lecturas
// y escrituras pasan por el mutex; la escritura es tmp + fsync + rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func closedSession() models.CashSession {
	return models.CashSession{Movements: []models.CashMovement{}}
}

// Load devuelve la sesión actual; sin archivo, la caja está cerrada.
func (s *FileStore) Load() (models.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update aplica fn sobre la sesión y persiste el resultado. Si fn devuelve
// error no se escribe nada.
func (s *FileStore) Update(fn func(*models.CashSession) error) (models.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load()
	if err != nil {
		return models.CashSession{}, err
	}
	if err := fn(&session); err != nil {
		return models.CashSession{}, err
	}
	if err := s.write(session); err != nil {
		return models.CashSession{}, err
	}
	return session, nil
}

func (s *FileStore) load() (models.CashSession, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return closedSession(), nil
	}
	if err != nil {
		return models.CashSession{}, fmt.Errorf("leer %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return closedSession(), nil
	}

	session := closedSession()
	if err := json.Unmarshal(data, &session); err != nil {
		return models.CashSession{}, fmt.Errorf("%s corrupto: %w", s.path, err)
	}
	if session.Movements == nil {
		session.Movements = []models.CashMovement{}
	}
	return session, nil
}

func (s *FileStore) write(session models.CashSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("crear %s: %w", tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("escribir %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("renombrar %s: %w", tmp, err)
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
