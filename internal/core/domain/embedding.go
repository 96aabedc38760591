package domain

// TrainParams are the hyperparameters handed to an embedding trainer.
type TrainParams struct {
	MinCount int   `json:"min_count"`
	Size     int   `json:"size"`
	Window   int   `json:"window"`
	SkipGram bool  `json:"sg"`
	Epochs   int   `json:"epochs,omitempty"`
	Negative int   `json:"negative,omitempty"`
	Seed     int64 `json:"seed,omitempty"`
}

// DefaultTrainParams mirrors the usual word2vec defaults.
func DefaultTrainParams() TrainParams {
	return TrainParams{
		MinCount: 1,
		Size:     100,
		Window:   5,
		Epochs:   5,
		Negative: 5,
		Seed:     1,
	}
}

// Embedding maps every vocabulary token to a fixed-length vector.
// Vectors[i] belongs to Tokens[i].
type Embedding struct {
	Tokens  []Token
	Vectors [][]float64
}

func (e Embedding) Dim() int {
	if len(e.Vectors) == 0 {
		return 0
	}
	return len(e.Vectors[0])
}

// Lookup returns the vector for tok.
func (e Embedding) Lookup(tok Token) ([]float64, bool) {
	for i, t := range e.Tokens {
		if t == tok {
			return e.Vectors[i], true
		}
	}
	return nil, false
}

// Point is one token placed in the reduced space.
type Point struct {
	Token Token   `json:"token"`
	Mode  KeyMode `json:"mode"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Projection is an embedding reduced to two dimensions, in vocabulary order.
type Projection struct {
	Method string  `json:"method"`
	Points []Point `json:"points"`
}

// NewProjection pairs tokens with reduced coordinates. coords[i] belongs
// to tokens[i] and must hold at least two values.
func NewProjection(method string, tokens []Token, coords [][]float64) Projection {
	p := Projection{Method: method, Points: make([]Point, len(tokens))}
	for i, tok := range tokens {
		p.Points[i] = Point{Token: tok, Mode: ModeOf(tok), X: coords[i][0], Y: coords[i][1]}
	}
	return p
}
