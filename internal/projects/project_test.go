package projects_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

func TestStatusAdvance(t *testing.T) {
	tests := []struct {
		name    string
		current projects.Status
		target  projects.Status
		want    projects.Status
	}{
		{"forward", projects.StatusCreated, projects.StatusProfileSet, projects.StatusProfileSet},
		{"skip ahead", projects.StatusProfileSet, projects.StatusNarrativeReady, projects.StatusNarrativeReady},
		{"never regresses", projects.StatusObjectionsReady, projects.StatusNarrativeReady, projects.StatusObjectionsReady},
		{"same stage", projects.StatusEnriched, projects.StatusEnriched, projects.StatusEnriched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.current.Advance(tt.target); got != tt.want {
				t.Errorf("%s.Advance(%s) = %s, want %s", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestStatusRankOrder(t *testing.T) {
	all := projects.Statuses()
	for i := 1; i < len(all); i++ {
		if all[i].Rank() <= all[i-1].Rank() {
			t.Errorf("%s rank %d not above %s", all[i], all[i].Rank(), all[i-1])
		}
	}
	if projects.Status("bogus").Rank() != -1 {
		t.Error("unknown status should rank -1")
	}
}

func TestNewProject(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		cmd      projects.CreateCommand
		wantErr  error
		wantType projects.ProjectType
	}{
		{
			name:     "valid",
			cmd:      projects.CreateCommand{Title: " Q3 pitch ", ProjectType: "elevator_pitch"},
			wantType: projects.TypeElevatorPitch,
		},
		{
			name:     "default type",
			cmd:      projects.CreateCommand{Title: "Pitch"},
			wantType: projects.TypeSalesPitch,
		},
		{
			name:    "blank title",
			cmd:     projects.CreateCommand{Title: "   "},
			wantErr: projects.ErrValidation,
		},
		{
			name:    "unknown type",
			cmd:     projects.CreateCommand{Title: "Pitch", ProjectType: "webinar"},
			wantErr: projects.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := projects.NewProject(tt.cmd, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Status != projects.StatusCreated {
				t.Errorf("status = %s, want created", p.Status)
			}
			if p.ProjectType != tt.wantType {
				t.Errorf("type = %s, want %s", p.ProjectType, tt.wantType)
			}
			if p.ID.String() == "" || !p.CreatedAt.Equal(now) {
				t.Errorf("unexpected identity fields: %+v", p)
			}
		})
	}
}

func TestNewProjectAcceptsEveryType(t *testing.T) {
	for _, typ := range projects.ProjectTypes() {
		p, err := projects.NewProject(projects.CreateCommand{Title: "Pitch", ProjectType: string(typ)}, time.Now())
		if err != nil {
			t.Errorf("%s: %v", typ, err)
			continue
		}
		if p.Status != projects.StatusCreated || p.ProjectType != typ {
			t.Errorf("%s: project = %+v", typ, p)
		}
	}
}

func TestProjectTypeUnmarshal(t *testing.T) {
	var v struct {
		Type projects.ProjectType `json:"type"`
	}
	if err := json.Unmarshal([]byte(`{"type":"proposta_comercial"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Type != projects.TypeCommercialProposal {
		t.Errorf("type = %s", v.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"nope"}`), &v); !errors.Is(err, projects.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestNewClientProfile(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		cmd      projects.ProfileCommand
		wantErr  error
		wantDISC projects.DISCProfile
		wantSite string
	}{
		{
			name:     "infers D for software",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Industry: "Software B2B"},
			wantDISC: projects.DISCDominance,
		},
		{
			name:     "infers I for marketing",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Industry: "Agência de Marketing"},
			wantDISC: projects.DISCInfluence,
		},
		{
			name:     "infers S for health",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Industry: "Saúde"},
			wantDISC: projects.DISCSteadiness,
		},
		{
			name:     "falls back to C",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Industry: "Mineração"},
			wantDISC: projects.DISCCompliance,
		},
		{
			name:     "explicit profile wins",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Industry: "software", DISCProfile: "s"},
			wantDISC: projects.DISCSteadiness,
		},
		{
			name:     "website gets scheme",
			cmd:      projects.ProfileCommand{CompanyName: "Acme", Website: "acme.com.br"},
			wantDISC: projects.DISCCompliance,
			wantSite: "https://acme.com.br",
		},
		{
			name:    "blank company",
			cmd:     projects.ProfileCommand{CompanyName: " "},
			wantErr: projects.ErrValidation,
		},
		{
			name:    "unknown size",
			cmd:     projects.ProfileCommand{CompanyName: "Acme", Size: "gigantic"},
			wantErr: projects.ErrValidation,
		},
		{
			name:    "bad disc",
			cmd:     projects.ProfileCommand{CompanyName: "Acme", DISCProfile: "X"},
			wantErr: projects.ErrValidation,
		},
		{
			name:    "bad website scheme",
			cmd:     projects.ProfileCommand{CompanyName: "Acme", Website: "ftp://acme.com"},
			wantErr: projects.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := projects.NewClientProfile(tt.cmd, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.DISCProfile != tt.wantDISC {
				t.Errorf("disc = %s, want %s", p.DISCProfile, tt.wantDISC)
			}
			if p.Website != tt.wantSite {
				t.Errorf("website = %q, want %q", p.Website, tt.wantSite)
			}
			if !p.Enrichment.Empty() {
				t.Error("new profile should have empty enrichment")
			}
		})
	}
}

func TestNarrativeSections(t *testing.T) {
	var n projects.Narrative
	n.Set(projects.SectionBenefits, "  Faster onboarding.  ")
	n.Set(projects.SectionSocialProof, "   ")

	if got := n.Get(projects.SectionBenefits); got == nil || *got != "Faster onboarding." {
		t.Errorf("benefits = %v", got)
	}
	if n.Get(projects.SectionSocialProof) != nil {
		t.Error("blank section should be absent")
	}
	if n.Present() != 1 {
		t.Errorf("Present() = %d, want 1", n.Present())
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var keys map[string]any
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, s := range projects.Sections() {
		if _, ok := keys[string(s)]; !ok {
			t.Errorf("serialized narrative missing key %s", s)
		}
	}

	clone := n.Clone()
	*clone.Benefits = "changed"
	if *n.Benefits != "Faster onboarding." {
		t.Error("Clone shares section storage")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{projects.ErrNotFound, 404},
		{projects.ErrValidation, 400},
		{projects.ErrPrecondition, 412},
		{projects.ErrBusy, 409},
		{projects.ErrAdapter, 502},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := projects.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
