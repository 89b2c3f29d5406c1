package leadctx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/briefing-service/internal/model"
)

// LoadFile reads a JSON or YAML array of lead contexts from path. The
// format is chosen by extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadctx: read context file")
	}

	var entries []model.LeadContext
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, eris.Wrap(err, "leadctx: unmarshal yaml contexts")
		}
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, eris.Wrap(err, "leadctx: unmarshal json contexts")
		}
	}

	return NewStore("file:"+path, entries), nil
}
