package docstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm/clause"
)

// VectorFunction selects the pgvector distance used to rank embeddings.
type VectorFunction string

const (
	L2Distance      VectorFunction = "L2Distance"
	L1Distance      VectorFunction = "L1Distance"
	CosineDistance  VectorFunction = "CosineDistance"
	MaxInnerProduct VectorFunction = "MaxInnerProduct"
	HammingDistance VectorFunction = "HammingDistance"
	JaccardDistance VectorFunction = "JaccardDistance"
)

var vectorFunctionAliases = map[string]VectorFunction{
	"l2distance":      L2Distance,
	"l2":              L2Distance,
	"euclidean":       L2Distance,
	"l1distance":      L1Distance,
	"l1":              L1Distance,
	"taxicab":         L1Distance,
	"cosinedistance":  CosineDistance,
	"cosine":          CosineDistance,
	"maxinnerproduct": MaxInnerProduct,
	"inner_product":   MaxInnerProduct,
	"dot":             MaxInnerProduct,
	"hammingdistance": HammingDistance,
	"hamming":         HammingDistance,
	"jaccarddistance": JaccardDistance,
	"jaccard":         JaccardDistance,
}

// ParseVectorFunction resolves a function by name, e.g. "CosineDistance"
// or "cosine". The empty string yields the zero VectorFunction.
func ParseVectorFunction(s string) (VectorFunction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if fn, ok := vectorFunctionAliases[strings.ToLower(s)]; ok {
		return fn, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVectorFunction, s)
}

// Valid reports whether fn is one of the canonical function names. Use
// ParseVectorFunction for aliases.
func (fn VectorFunction) Valid() bool {
	return fn.Operator() != ""
}

// Ascending reports whether smaller scores rank first. Only the L1 and L2
// distances sort ascending; every other score is a similarity.
func (fn VectorFunction) Ascending() bool {
	return fn == L1Distance || fn == L2Distance
}

// Binary reports whether fn compares binary-quantized vectors.
func (fn VectorFunction) Binary() bool {
	return fn == HammingDistance || fn == JaccardDistance
}

// Operator returns the pgvector distance operator.
func (fn VectorFunction) Operator() string {
	switch fn {
	case L2Distance:
		return "<->"
	case L1Distance:
		return "<+>"
	case CosineDistance:
		return "<=>"
	case MaxInnerProduct:
		return "<#>"
	case HammingDistance:
		return "<~>"
	case JaccardDistance:
		return "<%>"
	default:
		return ""
	}
}

// OpClass returns the HNSW operator class matching fn.
func (fn VectorFunction) OpClass() string {
	switch fn {
	case L2Distance:
		return "vector_l2_ops"
	case L1Distance:
		return "vector_l1_ops"
	case CosineDistance:
		return "vector_cosine_ops"
	case MaxInnerProduct:
		return "vector_ip_ops"
	case HammingDistance:
		return "bit_hamming_ops"
	case JaccardDistance:
		return "bit_jaccard_ops"
	default:
		return ""
	}
}

// scoreExpr renders the score of column against query:
//
//	L2, L1    distance
//	cosine    1 - distance
//	inner     distance * -1
//	hamming   distance * -1
//	jaccard   1 - distance
//
// Binary functions quantize both sides, positive components become 1.
func (fn VectorFunction) scoreExpr(column clause.Column, query []float32) (clause.Expr, error) {
	if len(query) == 0 {
		return clause.Expr{}, fmt.Errorf("%w: empty query embedding", ErrInvalidQuery)
	}

	var distance string
	var vars []interface{}
	if fn.Binary() {
		bits := "bit(" + strconv.Itoa(len(query)) + ")"
		distance = "binary_quantize(?)::" + bits + " " + fn.Operator() + " ?::text::" + bits
		vars = []interface{}{column, quantize(query)}
	} else {
		op := fn.Operator()
		if op == "" {
			return clause.Expr{}, fmt.Errorf("%w: %q", ErrUnknownVectorFunction, string(fn))
		}
		distance = "? " + op + " ?::vector"
		vars = []interface{}{column, pgvector.NewVector(query)}
	}

	switch fn {
	case CosineDistance, JaccardDistance:
		return clause.Expr{SQL: "1 - (" + distance + ")", Vars: vars}, nil
	case MaxInnerProduct, HammingDistance:
		return clause.Expr{SQL: "(" + distance + ") * -1", Vars: vars}, nil
	default:
		return clause.Expr{SQL: distance, Vars: vars}, nil
	}
}

func quantize(v []float32) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, x := range v {
		if x > 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
