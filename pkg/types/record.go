// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Canonical column names shared by every pipeline stage. Raw sources use
// a variety of aliases; normalization maps them onto these.
const (
	ColCommuneCode = "code_commune_insee"
	ColCommuneName = "nom_commune"
	ColYear        = "annee"
	ColScrutin     = "type_scrutin"
	ColRound       = "tour"
	ColScrutinDate = "date_scrutin"
	ColWinner      = "parti_en_tete"
	ColFamily      = "famille_politique"
	ColEstimated   = "estime"
)

// KeyColumns identify a single election result row. The four-tuple must
// be unique after normalization; duplicates indicate upstream join errors.
var KeyColumns = []string{ColCommuneCode, ColYear, ColScrutin, ColRound}

// TallyColumns are the raw ballot counts every election row carries.
var TallyColumns = []string{"inscrits", "votants", "blancs", "nuls", "exprimes"}

// IndicatorColumns are the socio-economic measures joined per (commune, year)
// and diffed year-over-year within (commune, type_scrutin) groups.
var IndicatorColumns = []string{
	"population",
	"median_income",
	"unemployment_rate",
	"poverty_rate",
	"security_incidents_per_1000",
}

// Warning records a data-quality issue a stage degraded around instead of
// failing. The CLI reports warnings on stderr so silent NaN-fill never
// hides a broken source.
type Warning struct {
	// Stage names the pipeline stage that produced the warning
	// (e.g. "normalize", "derive").
	Stage string `json:"stage" yaml:"stage"`

	// Column is the affected column, if any.
	Column string `json:"column,omitempty" yaml:"column,omitempty"`

	// Rows counts affected rows, when countable.
	Rows int `json:"rows,omitempty" yaml:"rows,omitempty"`

	// Message describes the issue.
	Message string `json:"message" yaml:"message"`
}

// String renders the warning as a single status line.
func (w Warning) String() string {
	switch {
	case w.Column != "" && w.Rows > 0:
		return fmt.Sprintf("[%s] %s: %s (%d rows)", w.Stage, w.Column, w.Message, w.Rows)
	case w.Column != "":
		return fmt.Sprintf("[%s] %s: %s", w.Stage, w.Column, w.Message)
	default:
		return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
	}
}
