// Package roster は初期登録する従業員名簿の YAML を読み込みます。
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File は名簿ファイルの形式です。
//
//	employees:
//	  - JILL
//	  - BOB
type File struct {
	Employees []string `yaml:"employees"`
}

// Load は path の名簿を読み込み、空行を除いた名前を返します。path が空なら nil を返します。
func Load(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("roster: parse yaml: %w", err)
	}

	names := make([]string, 0, len(f.Employees))
	for _, n := range f.Employees {
		if strings.TrimSpace(n) == "" {
			continue
		}
		names = append(names, n)
	}
	return names, nil
}
