package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_LegacyTokens(t *testing.T) {
	p := NewParser()

	cmd := p.Parse("hampuffe")
	assert.Equal(t, KindLegacyEastern, cmd.Kind)
	assert.Equal(t, "Eastern", cmd.Timezone.Token)

	cmd = p.Parse("HAMPUFFP please")
	assert.Equal(t, KindLegacyPacific, cmd.Kind)
	assert.Equal(t, "Pacific", cmd.Timezone.Token)
}

func TestParse_Propagation(t *testing.T) {
	p := NewParser()

	cmd := p.Parse("  PROP PDT  ")
	assert.Equal(t, KindPropagation, cmd.Kind)
	assert.Equal(t, "PDT", cmd.Timezone.Token)

	cmd = p.Parse("propagation utc")
	assert.Equal(t, KindPropagation, cmd.Kind)
	assert.Equal(t, "UTC", cmd.Timezone.Token)

	// Bad or missing timezone is a corrected UNKNOWN, not an error.
	cmd = p.Parse("prop XYZ")
	assert.Equal(t, KindUnknown, cmd.Kind)
	assert.Equal(t, TimezoneHint(), cmd.Note)

	cmd = p.Parse("prop")
	assert.Equal(t, KindUnknown, cmd.Kind)
	assert.NotEmpty(t, cmd.Note)
}

func TestParse_OptStateTokens(t *testing.T) {
	p := NewParser()

	cmd := p.Parse("start")
	assert.Equal(t, KindOptIn, cmd.Kind)
	assert.Empty(t, cmd.Phone)

	cmd = p.Parse("REGISTER 555-111-2222")
	assert.Equal(t, KindOptIn, cmd.Kind)
	assert.Equal(t, "555-111-2222", cmd.Phone)

	cmd = p.Parse("stop")
	assert.Equal(t, KindOptOut, cmd.Kind)

	cmd = p.Parse("unregister +15551112222")
	assert.Equal(t, KindOptOut, cmd.Kind)
	assert.Equal(t, "+15551112222", cmd.Phone)
}

func TestParse_Help(t *testing.T) {
	p := NewParser()
	assert.Equal(t, KindHelp, p.Parse("help").Kind)
	assert.Equal(t, KindHelp, p.Parse("?").Kind)
	assert.Equal(t, KindHelp, p.Parse("  HELP  ").Kind)
}

func TestParse_Redirect(t *testing.T) {
	p := NewParser()

	cmd := p.Parse("abcd")
	assert.Equal(t, KindRedirect, cmd.Kind)

	cmd = p.Parse("KJFK")
	assert.Equal(t, KindRedirect, cmd.Kind)

	// Five characters is not an airport code.
	assert.Equal(t, KindUnknown, p.Parse("abcde").Kind)
}

func TestParse_ProfanityBeatsRedirect(t *testing.T) {
	p := NewParser()

	cmd := p.Parse("shit")
	assert.Equal(t, KindProfanity, cmd.Kind)
	assert.Equal(t, "Go shit your pants", cmd.Note)

	cmd = p.Parse("well fuck")
	assert.Equal(t, KindProfanity, cmd.Kind)
	assert.Equal(t, "Go fuck yourself, too", cmd.Note)
}

func TestParse_Unknown(t *testing.T) {
	p := NewParser()
	assert.Equal(t, KindUnknown, p.Parse("hello there").Kind)
	assert.Equal(t, KindUnknown, p.Parse("").Kind)
	assert.Equal(t, KindUnknown, p.Parse("   ").Kind)
}
