package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/faeln1/alerta-roja/internal/domain/community"
	"gopkg.in/yaml.v3"
)

var fileExtensions = []string{".json", ".yaml", ".yml"}

// fileCommunityRepo reads <dir>/<name>.json|.yaml|.yml. Files are re-read on
// every Get so edits on disk are picked up without a restart.
type fileCommunityRepo struct {
	dir string
	mu  sync.Mutex
}

func NewFileCommunityRepo(dir string) (CommunityRepository, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("communities dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &fileCommunityRepo{dir: filepath.Clean(dir)}, nil
}

func (r *fileCommunityRepo) Get(ctx context.Context, name string) (*community.Community, error) {
	key, err := normalizeKey(name)
	if err != nil {
		return nil, err
	}
	for _, ext := range fileExtensions {
		path := filepath.Join(r.dir, key+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		c, err := decodeCommunity(data, ext)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		c.Name = key
		return c, nil
	}
	return nil, ErrCommunityNotFound
}

func (r *fileCommunityRepo) Save(ctx context.Context, c *community.Community) error {
	key, err := normalizeKey(c.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(r.dir, key+".json"))
}

func (r *fileCommunityRepo) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !hasExtension(ext) {
			continue
		}
		key, err := normalizeKey(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err != nil {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func decodeCommunity(data []byte, ext string) (*community.Community, error) {
	var c community.Community
	switch ext {
	case ".yaml", ".yml":
		var doc yamlCommunity
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		c = doc.toDomain()
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	}
	if c.Miembros == nil {
		c.Miembros = []community.Member{}
	}
	return &c, nil
}

func hasExtension(ext string) bool {
	for _, e := range fileExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// yamlCommunity mirrors the JSON document; telegram ids may be written as
// numbers or strings in YAML too.
type yamlCommunity struct {
	ChatID   yaml.Node    `yaml:"chat_id"`
	Miembros []yamlMember `yaml:"miembros"`
}

type yamlMember struct {
	TelegramID       yaml.Node              `yaml:"telegram_id"`
	Nombre           string                 `yaml:"nombre"`
	Telefono         string                 `yaml:"telefono"`
	AlertasActivadas bool                   `yaml:"alertas_activadas"`
	Direccion        string                 `yaml:"direccion"`
	Geolocalizacion  *community.Geolocation `yaml:"geolocalizacion"`
}

func (y yamlCommunity) toDomain() community.Community {
	c := community.Community{ChatID: community.TelegramID(strings.TrimSpace(y.ChatID.Value)), Miembros: make([]community.Member, 0, len(y.Miembros))}
	for _, m := range y.Miembros {
		c.Miembros = append(c.Miembros, community.Member{
			TelegramID:       community.TelegramID(strings.TrimSpace(m.TelegramID.Value)),
			Nombre:           m.Nombre,
			Telefono:         m.Telefono,
			AlertasActivadas: m.AlertasActivadas,
			Direccion:        m.Direccion,
			Geolocalizacion:  m.Geolocalizacion,
		})
	}
	return c
}
