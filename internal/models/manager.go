package models

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Progress состояние загрузки.
type Progress struct {
	ModelID    string
	Downloaded int64
	Total      int64
	Done       bool
}

// Percent возвращает процент загрузки 0-100.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(min(100, p.Downloaded*100/p.Total))
}

// Manager скачивает и хранит модели.
type Manager struct {
	modelsDir string
	client    *http.Client
	logger    hclog.Logger
	mu        sync.Mutex
}

// NewManager создаёт менеджер с директорией models/ рядом с бинарником.
func NewManager(logger hclog.Logger) (*Manager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("не удалось определить путь к бинарнику: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось разрешить симлинки: %w", err)
	}
	return NewManagerAt(filepath.Join(filepath.Dir(execPath), "models"), logger)
}

// NewManagerAt создаёт менеджер с заданной директорией моделей.
func NewManagerAt(dir string, logger hclog.Logger) (*Manager, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	for _, engine := range []Engine{EngineWhisper, EngineVosk} {
		if err := os.MkdirAll(filepath.Join(dir, string(engine)), 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию %s: %w", engine, err)
		}
	}
	return &Manager{
		modelsDir: dir,
		client:    http.DefaultClient,
		logger:    logger,
	}, nil
}

// ModelsDir возвращает путь к директории моделей.
func (m *Manager) ModelsDir() string {
	return m.modelsDir
}

// GetModelPath возвращает полный путь к модели.
func (m *Manager) GetModelPath(info ModelInfo) string {
	return filepath.Join(m.modelsDir, string(info.Engine), info.Filename)
}

// IsDownloaded проверяет, скачана ли модель: для архивов - директория,
// для файлов - непустой файл.
func (m *Manager) IsDownloaded(info ModelInfo) bool {
	stat, err := os.Stat(m.GetModelPath(info))
	if err != nil {
		return false
	}
	if info.IsZip {
		return stat.IsDir()
	}
	return stat.Size() > 0
}

// ListDownloaded возвращает скачанные модели.
func (m *Manager) ListDownloaded() []ModelInfo {
	var downloaded []ModelInfo
	for _, model := range Registry {
		if m.IsDownloaded(model) {
			downloaded = append(downloaded, model)
		}
	}
	return downloaded
}

// Download скачивает модель. progress может быть nil; промежуточные
// обновления отбрасываются, если канал занят.
func (m *Manager) Download(ctx context.Context, info ModelInfo, progress chan<- Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsDownloaded(info) {
		m.logger.Debug("модель уже скачана", "id", info.ID)
		report(progress, Progress{ModelID: info.ID, Downloaded: info.Size, Total: info.Size, Done: true}, true)
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Join(m.modelsDir, string(info.Engine)), info.Filename+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	m.logger.Info("загрузка модели", "id", info.ID, "url", info.URL)
	total, err := m.fetch(ctx, info, tmp, progress)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if info.IsZip {
		if err := unzip(tmpPath, filepath.Dir(m.GetModelPath(info))); err != nil {
			return fmt.Errorf("ошибка распаковки: %w", err)
		}
		if !m.IsDownloaded(info) {
			return fmt.Errorf("в архиве нет директории %s", info.Filename)
		}
	} else if err := os.Rename(tmpPath, m.GetModelPath(info)); err != nil {
		return err
	}

	report(progress, Progress{ModelID: info.ID, Downloaded: total, Total: total, Done: true}, true)
	return nil
}

// fetch скачивает info.URL в w и возвращает число байт.
func (m *Manager) fetch(ctx context.Context, info ModelInfo, w io.Writer, progress chan<- Progress) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ошибка скачивания: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP ошибка: %s", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = info.Size
	}

	pw := &progressWriter{
		w:        w,
		progress: progress,
		state:    Progress{ModelID: info.ID, Total: total},
	}
	n, err := io.Copy(pw, resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
		return n, err
	}
	return n, nil
}

// progressWriter считает записанные байты и сообщает прогресс.
type progressWriter struct {
	w        io.Writer
	progress chan<- Progress
	state    Progress
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.state.Downloaded += int64(n)
	report(p.progress, p.state, false)
	return n, err
}

func report(ch chan<- Progress, p Progress, wait bool) {
	if ch == nil {
		return
	}
	if wait {
		ch <- p
		return
	}
	select {
	case ch <- p:
	default:
	}
}

func unzip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, f := range r.File {
		fpath := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("недопустимый путь в архиве: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
			return err
		}
		if err := extract(f, fpath); err != nil {
			return err
		}
	}
	return nil
}

func extract(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, rc)
	return multierror.Append(err, out.Close()).ErrorOrNil()
}

// Delete удаляет модель.
func (m *Manager) Delete(info ModelInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return os.RemoveAll(m.GetModelPath(info))
}
