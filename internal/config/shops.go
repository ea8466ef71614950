package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"planhebdo/internal/models"
	"planhebdo/internal/timeslots"
)

// EmployeeConfig is one roster entry of a shop.
type EmployeeConfig struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	CanWorkIn []string `yaml:"can_work_in,omitempty"`
}

// ShopConfig represents a single shop configuration.
type ShopConfig struct {
	ID        string                `yaml:"id"`
	Name      string                `yaml:"name"`
	CanWorkIn []string              `yaml:"can_work_in,omitempty"`
	Employees []EmployeeConfig      `yaml:"employees"`
	Grid      *timeslots.GridConfig `yaml:"grid,omitempty"`
}

// DefaultsConfig holds global defaults applied to shops without explicit
// settings.
type DefaultsConfig struct {
	Grid *timeslots.GridConfig `yaml:"grid"`
}

// ShopsConfig is the root configuration for shops.yaml.
type ShopsConfig struct {
	Shops    []ShopConfig   `yaml:"shops"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// LoadShops loads and validates the shop roster configuration.
func (c *Config) LoadShops() (*ShopsConfig, error) {
	return LoadShopsConfig(c.ShopsConfigPath)
}

// LoadShopsConfig loads and validates shops configuration from a YAML file.
func LoadShopsConfig(path string) (*ShopsConfig, error) {
	if path == "" {
		path = "configs/shops.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shops config: %w", err)
	}

	var cfg ShopsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse shops config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate shops config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *ShopsConfig) Validate() error {
	if len(c.Shops) == 0 {
		return fmt.Errorf("no shops defined")
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)

	for i, shop := range c.Shops {
		if shop.ID == "" {
			return fmt.Errorf("shop[%d]: id is required", i)
		}
		if ids[shop.ID] {
			return fmt.Errorf("shop[%d]: duplicate id %q", i, shop.ID)
		}
		ids[shop.ID] = true

		if shop.Name == "" {
			return fmt.Errorf("shop[%d]: name is required", i)
		}
		if names[shop.Name] {
			return fmt.Errorf("shop[%d]: duplicate name %q", i, shop.Name)
		}
		names[shop.Name] = true

		empIDs := make(map[string]bool)
		for j, emp := range shop.Employees {
			if emp.ID == "" {
				return fmt.Errorf("shop[%d].employees[%d]: id is required", i, j)
			}
			if empIDs[emp.ID] {
				return fmt.Errorf("shop[%d].employees[%d]: duplicate id %q", i, j, emp.ID)
			}
			empIDs[emp.ID] = true
		}
	}
	return nil
}

// applyDefaults copies the default grid onto shops without an explicit one.
func (c *ShopsConfig) applyDefaults() {
	for i := range c.Shops {
		if c.Shops[i].Grid == nil && c.Defaults.Grid != nil {
			grid := *c.Defaults.Grid
			c.Shops[i].Grid = &grid
		}
	}
}

// Shop returns the shop with the given ID, or nil.
func (c *ShopsConfig) Shop(id string) *ShopConfig {
	for i := range c.Shops {
		if c.Shops[i].ID == id {
			return &c.Shops[i]
		}
	}
	return nil
}

// ResolveShopByName maps a display name (as found in the "Boutique" column
// of POS exports) to a shop ID, case-insensitively.
func (c *ShopsConfig) ResolveShopByName(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i := range c.Shops {
		if strings.ToLower(c.Shops[i].Name) == needle || c.Shops[i].ID == needle {
			return c.Shops[i].ID, true
		}
	}
	return "", false
}

// GridFor returns the normalized grid configuration for a shop, falling
// back to the default grid when the shop's is missing or invalid. The bool
// is false when the fallback was taken.
func (c *ShopsConfig) GridFor(shopID string) (timeslots.GridConfig, bool) {
	shop := c.Shop(shopID)
	if shop == nil || shop.Grid == nil {
		return timeslots.DefaultGridConfig(), false
	}
	return timeslots.Normalize(*shop.Grid)
}

// ModelShops converts the configuration into model records.
func (c *ShopsConfig) ModelShops() []models.Shop {
	shops := make([]models.Shop, 0, len(c.Shops))
	for _, s := range c.Shops {
		shop := models.Shop{
			ID:        s.ID,
			Name:      s.Name,
			CanWorkIn: s.CanWorkIn,
		}
		for _, e := range s.Employees {
			shop.Employees = append(shop.Employees, models.Employee{
				ID:        e.ID,
				Name:      e.Name,
				CanWorkIn: e.CanWorkIn,
			})
		}
		shops = append(shops, shop)
	}
	return shops
}

// EmployeeNames returns the id -> display name map of one shop.
func (c *ShopsConfig) EmployeeNames(shopID string) map[string]string {
	names := map[string]string{}
	shop := c.Shop(shopID)
	if shop == nil {
		return names
	}
	for _, e := range shop.Employees {
		names[e.ID] = e.Name
	}
	return names
}
