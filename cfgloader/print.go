package cfgloader

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/rise-and-shine/filedepot/mask"
)

func printConfig(config any) {
	out, err := yaml.Marshal(mask.StructToOrdMap(config))
	if err != nil {
		slog.Error("failed to marshal config", "error", err.Error())
		return
	}
	slog.Info(fmt.Sprintf("Loaded config:\n%s", string(out)))
}
