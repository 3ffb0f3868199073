package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Company is the seller block printed on every tax document.
type Company struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"addr"`
	Phone   string `yaml:"phone" json:"phone"`
	Branch  string `yaml:"branch" json:"branch"`
	TaxID   string `yaml:"tax_id" json:"tax"`
}

// DefaultCompany is used when no COMPANY_PROFILE file is configured.
func DefaultCompany() Company {
	return Company{
		Name:    "บริษัท เอส แอนด์ เอส อินคอม จำกัด",
		Address: "69 หมู่ 10 ต.พังตรุ อ.พนมทวน จ.กาญจนบุรี 71140",
		Phone:   "0888088840",
		Branch:  "สำนักงานใหญ่",
		TaxID:   "0715544000020",
	}
}

// LoadCompany reads a YAML company profile. Missing keys keep the default values.
func LoadCompany(path string) (Company, error) {
	c := DefaultCompany()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read company profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("parse company profile %s: %w", path, err)
	}
	return c, nil
}
