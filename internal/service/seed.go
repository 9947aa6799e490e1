package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"tenderbid/db"
	"tenderbid/models"
)

// Seed описывает начальное наполнение справочника.
type Seed struct {
	Employees     []SeedEmployee     `yaml:"employees"`
	Organizations []SeedOrganization `yaml:"organizations"`
}

type SeedEmployee struct {
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type SeedOrganization struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Type        models.OrganizationType `yaml:"type"`
	Responsible []string                `yaml:"responsible"`
}

func LoadSeed(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seed := &Seed{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return seed, nil
}

// ApplySeed добавляет недостающих сотрудников и организации. Повторный запуск
// ничего не дублирует: записи ищутся по username и имени организации.
func ApplySeed(ctx context.Context, store *db.Storage, seed *Seed, log zerolog.Logger) error {
	return store.Atomic(ctx, func(tx *db.Storage) error {
		dir := NewDirectory(tx)
		employees := make(map[string]*models.Employee, len(seed.Employees))

		for _, se := range seed.Employees {
			e, err := tx.GetEmployeeByUsername(ctx, se.Username)
			if errors.Is(err, models.ErrNotFound) {
				e = &models.Employee{Username: se.Username, FirstName: se.FirstName, LastName: se.LastName}
				err = dir.CreateEmployee(ctx, e)
				if err == nil {
					log.Info().Str("username", e.Username).Msg("seeded employee")
				}
			}
			if err != nil {
				return fmt.Errorf("seed employee %q: %w", se.Username, err)
			}
			employees[e.Username] = e
		}

		for _, so := range seed.Organizations {
			org, err := tx.FindOrganizationByName(ctx, so.Name)
			if err == nil {
				// связи уже существующей организации не трогаем
				continue
			}
			if !errors.Is(err, models.ErrNotFound) {
				return err
			}

			org = &models.Organization{Name: so.Name, Description: so.Description, Type: so.Type}
			if err := dir.CreateOrganization(ctx, org); err != nil {
				return fmt.Errorf("seed organization %q: %w", so.Name, err)
			}
			for _, username := range so.Responsible {
				e, ok := employees[username]
				if !ok {
					if e, err = tx.GetEmployeeByUsername(ctx, username); err != nil {
						return fmt.Errorf("seed responsible %q for %q: %w", username, so.Name, err)
					}
				}
				if err := dir.AddResponsible(ctx, org.ID, e.ID); err != nil {
					return err
				}
			}
			log.Info().Str("organization", org.Name).Int("responsible", len(so.Responsible)).Msg("seeded organization")
		}
		return nil
	})
}
