// Package editor は認証ゲートの内側にあるワークスペース編集機能を提供します。
package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrInvalidPath はワークスペース外を指すパスを表します。
	ErrInvalidPath = errors.New("path escapes workspace root")
	// ErrNotFound は対象のファイルが存在しないことを表します。
	ErrNotFound = errors.New("file not found")
	// ErrTooLarge はファイルがサイズ上限を超えていることを表します。
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Entry はワークスペース内の1エントリ（ファイルまたはディレクトリ）です。
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	IsDir   bool      `json:"isDir"`
	ModTime time.Time `json:"modTime"`
}

// FileContent は読み出したファイルの内容と判定済みMIMEタイプです。
type FileContent struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Service はワークスペースルート配下のファイル操作を提供します。
// すべてのパスはルート配下に正規化され、外へ出るパスは拒否されます。
type Service struct {
	root        string
	maxFileSize int64
}

// NewService は Service を作成します。ルートが無ければ作成します。
func NewService(root string, maxFileSize int64) (*Service, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare workspace root: %w", err)
	}
	return &Service{root: abs, maxFileSize: maxFileSize}, nil
}

// List は相対パスで指定したディレクトリの一覧を返します。
// ディレクトリを先、名前順で整列します。
func (s *Service) List(relPath string) ([]Entry, error) {
	dir, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.ToSlash(filepath.Join(relPath, de.Name())),
			Size:    info.Size(),
			IsDir:   de.IsDir(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ReadFile はファイル内容を読み出し、MIMEタイプを判定して返します。
func (s *Service) ReadFile(relPath string) (*FileContent, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, ErrTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &FileContent{
		Path:     filepath.ToSlash(relPath),
		Content:  string(data),
		MimeType: mimetype.Detect(data).String(),
		Size:     info.Size(),
	}, nil
}

// SaveFile はファイル内容を書き込みます。親ディレクトリは必要に応じて作成します。
func (s *Service) SaveFile(relPath string, content []byte) error {
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return ErrTooLarge
	}
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// Root はワークスペースの絶対パスを返します。
func (s *Service) Root() string {
	return s.root
}

// resolve は相対パスをルート配下の絶対パスに正規化します。
// ルートの外へ出るパスは ErrInvalidPath で拒否します。
func (s *Service) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(relPath))
	abs := filepath.Join(s.root, cleaned)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return abs, nil
}
