package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voiceassist/internal/apperr"
	"voiceassist/internal/i18n"
	"voiceassist/internal/models"
)

func (c *cli) newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Локальные модели распознавания речи",
		Args:  noArgs,
	}

	var engine string
	list := &cobra.Command{
		Use:   "list",
		Short: "Показать известные модели",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := models.Registry
			if engine != "" {
				registry = models.GetModelsByEngine(models.Engine(engine))
				if len(registry) == 0 {
					return fmt.Errorf("%w: нет локальных моделей движка %q", apperr.ErrUsage, engine)
				}
			}
			m, err := c.manager()
			if err != nil {
				return err
			}
			return listModels(c.stdout, m, registry, c.cfg.ModelID())
		},
	}
	list.Flags().StringVar(&engine, "engine", "", "только модели движка: whisper, vosk")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "download [id]",
			Short: "Скачать модель (по умолчанию " + models.DefaultModelID() + ")",
			Args:  optionalModelID,
			RunE: func(cmd *cobra.Command, args []string) error {
				id := models.DefaultModelID()
				if len(args) == 1 {
					id = args[0]
				}
				info, _ := models.GetModel(id)
				m, err := c.manager()
				if err != nil {
					return err
				}
				return downloadModel(cmd, m, info, c.stderr)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Удалить скачанную модель",
			Args:  oneModelID,
			RunE: func(cmd *cobra.Command, args []string) error {
				info, _ := models.GetModel(args[0])
				m, err := c.manager()
				if err != nil {
					return err
				}
				if !m.IsDownloaded(info) {
					return fmt.Errorf("модель не скачана: %s", info.ID)
				}
				if err := m.Delete(info); err != nil {
					return fmt.Errorf("%s: %w", info.ID, err)
				}
				fmt.Fprintf(c.stdout, i18n.T("models_deleted")+"\n", info.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "use <id>",
			Short: "Выбрать модель по умолчанию",
			Args:  oneModelID,
			RunE: func(cmd *cobra.Command, args []string) error {
				info, _ := models.GetModel(args[0])
				if err := c.cfg.SetModel(string(info.Engine), info.ID); err != nil {
					return fmt.Errorf("не удалось сохранить настройки: %w", err)
				}
				fmt.Fprintf(c.stdout, i18n.T("models_saved")+"\n", info.ID)
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) manager() (*models.Manager, error) {
	if c.modelsDir != "" {
		return models.NewManagerAt(c.modelsDir, c.logger.Named("models"))
	}
	return models.NewManager(c.logger.Named("models"))
}

func oneModelID(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: нужен ровно один ID модели", apperr.ErrUsage)
	}
	if _, ok := models.GetModel(args[0]); !ok {
		return fmt.Errorf("%w: неизвестная модель %q", apperr.ErrUsage, args[0])
	}
	return nil
}

// optionalModelID допускает пустой список аргументов или один известный ID.
func optionalModelID(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return oneModelID(cmd, args)
}

func listModels(w io.Writer, m *models.Manager, registry []models.ModelInfo, current string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENGINE\tNAME\tLANG\tSIZE\tSTATUS")
	for _, info := range registry {
		status := i18n.T("models_missing")
		if m.IsDownloaded(info) {
			status = i18n.T("models_downloaded")
		}
		if info.ID == current {
			status += ", " + i18n.T("models_current")
		}
		lang := info.Language
		if lang == "" {
			lang = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.ID, models.EngineName(info.Engine), info.Name, lang,
			humanize.IBytes(uint64(max(info.Size, 0))), status)
	}
	return tw.Flush()
}

func downloadModel(cmd *cobra.Command, m *models.Manager, info models.ModelInfo, status io.Writer) error {
	progress := make(chan models.Progress, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := -1
		for p := range progress {
			if pct := p.Percent(); pct != last {
				last = pct
				fmt.Fprintf(status, "\r"+i18n.T("models_progress"), info.ID, pct)
			}
		}
		if last >= 0 {
			fmt.Fprintln(status)
		}
	}()

	err := m.Download(cmd.Context(), info, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("%s: %w", info.ID, err)
	}
	fmt.Fprintf(status, i18n.T("models_done")+"\n", info.ID)
	return nil
}
