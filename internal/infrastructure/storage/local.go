package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YouSangSon/tour-service/internal/domain/repository"
)

// LocalStore는 로컬 디렉터리 기반 이미지 저장소입니다 (개발 환경용)
type LocalStore struct {
	root string
}

var _ repository.ImageStore = (*LocalStore)(nil)

// NewLocalStore는 root 아래에 파일을 저장하는 LocalStore를 생성합니다
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Put은 root/folder/name에 파일을 씁니다
func (s *LocalStore) Put(_ context.Context, folder, name, _ string, data []byte) error {
	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.Base(name)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
