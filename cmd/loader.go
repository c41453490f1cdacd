package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/meshachvetz/classalloc/internal/config"
	"github.com/meshachvetz/classalloc/internal/domain"
	"gopkg.in/yaml.v3"
)

// loadRoster reads the minimal CSV roster format into a School. This is a
// demonstration-only collaborator: full CSV ingestion and validation
// (imputation, error reporting) is explicitly out of the core's scope.
func loadRoster(path string) (*domain.School, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading roster csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster csv is empty")
	}
	header := rows[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	school := domain.NewSchool()
	classIDs := map[domain.ClassID]bool{}

	for _, row := range rows[1:] {
		get := func(name string) string {
			if idx, ok := col[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		academic, _ := strconv.ParseFloat(get("academic_score"), 64)
		s := &domain.Student{
			ID:                domain.StudentID(get("student_id")),
			FirstName:         get("first_name"),
			LastName:          get("last_name"),
			Gender:            domain.Gender(get("gender")),
			AcademicScore:     academic,
			BehaviorRank:      domain.Rank(get("behavior_rank")),
			StudentialityRank: domain.Rank(get("studentiality_rank")),
			AssistancePackage: parseBool(get("assistance_package")),
			SchoolOfOrigin:    get("school"),
			ClassID:           domain.ClassID(get("class")),
			ForceClass:        domain.ClassID(get("force_class")),
			ForceFriendGroup:  domain.GroupID(get("force_friend")),
		}
		for i := 1; i <= 3; i++ {
			if v := get(fmt.Sprintf("preferred_friend_%d", i)); v != "" {
				s.PreferredFriends = append(s.PreferredFriends, domain.StudentID(v))
			}
		}
		for i := 1; i <= 5; i++ {
			if v := get(fmt.Sprintf("disliked_peer_%d", i)); v != "" {
				s.DislikedPeers = append(s.DislikedPeers, domain.StudentID(v))
			}
		}
		s.NormalizePreferences()
		if s.ClassID != "" && !classIDs[s.ClassID] {
			school.AddClass(s.ClassID)
			classIDs[s.ClassID] = true
		}
		if err := school.AddStudent(s); err != nil {
			return nil, err
		}
	}
	return school, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := config.Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}
