package sheettable

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Condition represents a single query condition
type Condition struct {
	Column   string      // Column name
	Operator string      // ==, !=, >, >=, <, <=, in, between
	Value    interface{} // []interface{} for in, [2]interface{} for between
}

// Query represents a query with multiple conditions
type Query struct {
	Conditions []Condition // Combined with AND
	Limit      int
	Offset     int
}

// evalCondition evaluates a single condition against a record
func evalCondition(record *Record, condition Condition) bool {
	value, exists := record.Values[condition.Column]
	if !exists || IsNull(value) {
		value = nil
	}

	switch condition.Operator {
	case "==":
		return compareEqual(value, condition.Value)
	case "!=":
		return !compareEqual(value, condition.Value)
	case ">":
		c, ok := compareOrder(value, condition.Value)
		return ok && c > 0
	case ">=":
		c, ok := compareOrder(value, condition.Value)
		return ok && c >= 0
	case "<":
		c, ok := compareOrder(value, condition.Value)
		return ok && c < 0
	case "<=":
		c, ok := compareOrder(value, condition.Value)
		return ok && c <= 0
	case "in":
		return compareIn(value, condition.Value)
	case "between":
		return compareBetween(value, condition.Value)
	default:
		return false
	}
}

// MatchesQuery checks if a record matches all conditions in the query
func (r *Record) MatchesQuery(query Query) bool {
	for _, condition := range query.Conditions {
		if !evalCondition(r, condition) {
			return false
		}
	}
	return true
}

// compareEqual compares two values for equality
func compareEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if isNumeric(a) && isNumeric(b) {
		return toFloat64(a) == toFloat64(b)
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareOrder orders two numbers, two times or two strings. ok is false
// for any other combination, including nil.
func compareOrder(a, b interface{}) (c int, ok bool) {
	if isNumeric(a) && isNumeric(b) {
		return cmp.Compare(toFloat64(a), toFloat64(b)), true
	}
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), true
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
	}
	return 0, false
}

// compareIn checks if a is in the list b
func compareIn(a, b interface{}) bool {
	list, ok := b.([]interface{})
	if !ok {
		return false
	}

	for _, item := range list {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

// compareBetween checks if a is between b[0] and b[1]
func compareBetween(a, b interface{}) bool {
	var lower, upper interface{}

	switch v := b.(type) {
	case [2]interface{}:
		lower, upper = v[0], v[1]
	case []interface{}:
		if len(v) != 2 {
			return false
		}
		lower, upper = v[0], v[1]
	default:
		return false
	}

	lo, ok := compareOrder(a, lower)
	if !ok {
		return false
	}
	hi, ok := compareOrder(a, upper)
	return ok && lo >= 0 && hi <= 0
}

// isNumeric checks if a value is numeric
func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// toFloat64 converts a numeric value to float64
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}

// ApplyQuery filters records based on query conditions
func ApplyQuery(records []*Record, query Query) []*Record {
	var results []*Record

	for _, record := range records {
		if record.MatchesQuery(query) {
			results = append(results, record)
		}
	}

	if query.Offset > 0 && query.Offset < len(results) {
		results = results[query.Offset:]
	} else if query.Offset >= len(results) {
		return []*Record{}
	}

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results
}

var operators = []string{"==", "!=", ">", ">=", "<", "<=", "in", "between"}

// ValidateQuery validates query structure. Errors wrap ErrInvalidArgument.
func ValidateQuery(query Query) error {
	for i, cond := range query.Conditions {
		if !slices.Contains(operators, cond.Operator) {
			return fmt.Errorf("%w: invalid operator '%s' in condition %d", ErrInvalidArgument, cond.Operator, i)
		}

		if cond.Operator == "in" {
			if _, ok := cond.Value.([]interface{}); !ok {
				return fmt.Errorf("%w: operator 'in' requires []interface{} value in condition %d", ErrInvalidArgument, i)
			}
		}

		if cond.Operator == "between" {
			valid := false
			switch v := cond.Value.(type) {
			case [2]interface{}:
				valid = true
			case []interface{}:
				if len(v) == 2 {
					valid = true
				}
			}
			if !valid {
				return fmt.Errorf("%w: operator 'between' requires [2]interface{} or []interface{} with 2 elements in condition %d", ErrInvalidArgument, i)
			}
		}

		if cond.Column == "" {
			return fmt.Errorf("%w: empty column name in condition %d", ErrInvalidArgument, i)
		}
	}

	if query.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative", ErrInvalidArgument)
	}
	if query.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", ErrInvalidArgument)
	}

	return nil
}
