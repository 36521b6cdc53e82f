package curriculum

// Skill is a learning-activity category.
type Skill string

const (
	SkillListening  Skill = "listening"
	SkillReading    Skill = "reading"
	SkillSpeaking   Skill = "speaking"
	SkillWriting    Skill = "writing"
	SkillGrammar    Skill = "grammar"
	SkillVocabulary Skill = "vocabulary"
)

// AllSkills returns all skills in display order.
func AllSkills() []Skill {
	return []Skill{
		SkillListening,
		SkillReading,
		SkillSpeaking,
		SkillWriting,
		SkillGrammar,
		SkillVocabulary,
	}
}

// Known reports whether s is one of the fixed skill tags.
func (s Skill) Known() bool {
	switch s {
	case SkillListening, SkillReading, SkillSpeaking, SkillWriting, SkillGrammar, SkillVocabulary:
		return true
	default:
		return false
	}
}

// Shape returns the skill whose lesson shape applies to s. Unrecognized
// tags are served with the reading shape.
func (s Skill) Shape() Skill {
	if s.Known() {
		return s
	}
	return SkillReading
}

// DisplayName returns a human-readable name for a skill.
func (s Skill) DisplayName() string {
	switch s {
	case SkillListening:
		return "Listening"
	case SkillReading:
		return "Reading"
	case SkillSpeaking:
		return "Speaking"
	case SkillWriting:
		return "Writing"
	case SkillGrammar:
		return "Grammar"
	case SkillVocabulary:
		return "Vocabulary"
	default:
		return string(s)
	}
}
