package proof

// Step is one fragment of a proof. Content is opaque to the validator; in
// practice it holds a LaTeX snippet that the front end renders.
type Step struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"latex" yaml:"latex"`
}

// Category groups puzzles by proof technique.
type Category string

const (
	CategoryBigO      Category = "big-o"
	CategoryInduction Category = "induction"
	CategorySetTheory Category = "set-theory"
	CategoryRecursion Category = "recursion"
)

// AllCategories returns the known categories in display order.
func AllCategories() []Category {
	return []Category{CategoryBigO, CategoryInduction, CategorySetTheory, CategoryRecursion}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty is the author-assigned difficulty of a puzzle.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Puzzle is a set of steps together with the canonical order that forms a
// valid proof. Use NewPuzzle to obtain a checked value.
type Puzzle struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	DisplayTitle  string     `json:"displayTitle,omitempty" yaml:"displayTitle"`
	Statement     string     `json:"statement" yaml:"statement"`
	Category      Category   `json:"category,omitempty" yaml:"category"`
	Difficulty    Difficulty `json:"difficulty,omitempty" yaml:"difficulty"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags"`
	Steps         []Step     `json:"blocks" yaml:"blocks"`
	SolutionOrder []string   `json:"solutionOrder" yaml:"solutionOrder"`
}

// HintType tags a hint with the condition that produced it.
type HintType string

const (
	HintPosition HintType = "position"
	HintMissing  HintType = "missing"
	HintNext     HintType = "next"
)

// MaxHints caps the number of hints in a single result.
const MaxHints = 3

// Hint points the solver at one step. Content is the full step content so
// it can be rendered as-is.
type Hint struct {
	Type     HintType `json:"type"`
	Message  string   `json:"message"`
	Content  string   `json:"latex"`
	StepID   string   `json:"blockId"`
	Position int      `json:"position"`
}

// Placement records a step found at its solution position.
type Placement struct {
	StepID   string `json:"blockId"`
	Position int    `json:"position"`
}

// Misplacement records a position whose step differs from the solution.
type Misplacement struct {
	StepID         string `json:"blockId"`
	Position       int    `json:"position"`
	ExpectedStepID string `json:"expectedBlockId"`
}

// Details is the structured diagnosis behind a score.
type Details struct {
	TotalBlocks           int            `json:"totalBlocks"`
	UserBlocks            int            `json:"userBlocks"`
	CorrectBlocks         int            `json:"correctBlocks"`
	ExtraBlocks           int            `json:"extraBlocks"`
	MissingBlocks         int            `json:"missingBlocks"`
	IsComplete            bool           `json:"isComplete"`
	CorrectSequence       bool           `json:"correctSequence"`
	CorrectlyPositioned   []Placement    `json:"correctlyPositioned"`
	IncorrectlyPositioned []Misplacement `json:"incorrectlyPositioned"`
	Duplicates            []Placement    `json:"duplicates"`
}

// ValidationResult is the verdict for one user order.
type ValidationResult struct {
	Score     int     `json:"score"`
	IsCorrect bool    `json:"isCorrect"`
	Feedback  string  `json:"feedback"`
	Details   Details `json:"details"`
	Hints     []Hint  `json:"hints"`
}

// PartialResult is the lightweight prefix check used while the solver is
// still building the proof.
type PartialResult struct {
	Valid         bool    `json:"isValid"`
	CorrectSoFar  bool    `json:"correctSoFar"`
	NextExpected  string  `json:"nextExpected,omitempty"`
	Progress      float64 `json:"progress"`
	CurrentLength int     `json:"currentLength"`
	TotalLength   int     `json:"totalLength"`
}
