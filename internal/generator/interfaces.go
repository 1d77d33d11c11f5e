package generator

import (
	"github.com/toyz/configen/internal/config"
	"github.com/toyz/configen/internal/models"
)

// CodeGenerator defines the interface for generating config mirror modules from class schemas
type CodeGenerator interface {
	Generate(spec config.ModuleSpec) (string, error)
	GenerateModule(spec config.ModuleSpec) (*models.GeneratedModule, error)
}

var _ CodeGenerator = (*Generator)(nil)
