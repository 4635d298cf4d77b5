package speech

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"voiceassist/internal/models"
)

// Factory создаёт распознаватели по движку и модели.
type Factory struct {
	manager *models.Manager
	remote  RemoteConfig
	logger  hclog.Logger
}

// NewFactory создаёт фабрику распознавателей.
func NewFactory(manager *models.Manager, remote RemoteConfig, logger hclog.Logger) *Factory {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Factory{
		manager: manager,
		remote:  remote,
		logger:  logger,
	}
}

// Resolve выбирает локальную модель. Пустой modelID - первая скачанная
// модель движка; пустой engine - движок модели.
func (f *Factory) Resolve(engine Engine, modelID string) (models.ModelInfo, error) {
	if modelID != "" {
		info, ok := models.GetModel(modelID)
		if !ok {
			return models.ModelInfo{}, fmt.Errorf("модель не найдена: %s", modelID)
		}
		if engine != "" && Engine(info.Engine) != engine {
			return models.ModelInfo{}, fmt.Errorf("модель %s не для движка %s", modelID, engine)
		}
		if !f.manager.IsDownloaded(info) {
			return models.ModelInfo{}, fmt.Errorf("модель не скачана: %s (voiceassist models download %s)", info.ID, info.ID)
		}
		return info, nil
	}

	if engine == "" {
		engine = EngineWhisper
	}
	for _, info := range f.manager.ListDownloaded() {
		if Engine(info.Engine) == engine {
			return info, nil
		}
	}
	return models.ModelInfo{}, fmt.Errorf("нет скачанных моделей %s (voiceassist models list)", models.EngineName(models.Engine(engine)))
}

// Create создаёт распознаватель.
func (f *Factory) Create(engine Engine, modelID string) (Recognizer, error) {
	if engine == EngineOpenAI {
		f.logger.Debug("удалённое распознавание", "url", f.remote.URL, "model", f.remote.Model)
		return NewOpenAI(f.remote)
	}

	info, err := f.Resolve(engine, modelID)
	if err != nil {
		return nil, err
	}
	path := f.manager.GetModelPath(info)
	f.logger.Debug("загрузка модели", "id", info.ID, "path", path)

	var rec Recognizer
	switch info.Engine {
	case models.EngineWhisper:
		rec, err = NewWhisperFromFile(path)
	case models.EngineVosk:
		rec, err = NewVosk(path)
	default:
		return nil, fmt.Errorf("неизвестный движок: %s", info.Engine)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка создания распознавателя: %w", err)
	}
	return rec, nil
}
