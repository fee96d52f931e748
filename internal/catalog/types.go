package catalog

// CourseDocument is one catalog file: a course, its topics in walk order and
// an optional quiz
type CourseDocument struct {
	University *UniversityEntry `yaml:"university" json:"university,omitempty"`
	Course     CourseEntry      `yaml:"course" json:"course"`
	Topics     []TopicEntry     `yaml:"topics" json:"topics"`
	Quiz       *QuizEntry       `yaml:"quiz" json:"quiz,omitempty"`

	// Path is the file the document was read from
	Path string `yaml:"-" json:"-"`
}

type UniversityEntry struct {
	Name    string `yaml:"name" json:"name"`
	Region  string `yaml:"region" json:"region,omitempty"`
	Country string `yaml:"country" json:"country,omitempty"`
	Website string `yaml:"website" json:"website,omitempty"`
}

type CourseEntry struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`
	Category    string `yaml:"category" json:"category,omitempty"`
	Level       string `yaml:"level" json:"level,omitempty"`
	Language    string `yaml:"language" json:"language,omitempty"`
	Duration    int    `yaml:"duration" json:"duration,omitempty"`
	AnswerKey   string `yaml:"answer_key" json:"answer_key,omitempty"`
	CreatedBy   string `yaml:"created_by" json:"created_by,omitempty"`
}

type TopicEntry struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type QuizEntry struct {
	Title     string          `yaml:"title" json:"title,omitempty"`
	Questions []QuestionEntry `yaml:"questions" json:"questions"`
}

type QuestionEntry struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []string `yaml:"options" json:"options,omitempty"`
	Answer  string   `yaml:"answer" json:"answer"`
}
