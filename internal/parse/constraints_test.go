package parse

import (
	"reflect"
	"testing"
)

func TestKeysVocabularyOrder(t *testing.T) {
	c := Constraints{
		Count:              intPtr(2),
		MaxCalories:        floatPtr(450),
		MinProtein:         floatPtr(20),
		Diet:               []string{"vegetarian"},
		ExcludeIngredients: []string{"peanut"},
	}
	want := []string{"count", "max_calories", "min_protein", "diet", "exclude_ingredients"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestKeysEmptyLists(t *testing.T) {
	c := Constraints{IncludeIngredients: []string{}}
	if got := c.Keys(); len(got) != 0 {
		t.Errorf("empty list slices should not count as set, got %v", got)
	}
}

func TestIsZero(t *testing.T) {
	if !(Constraints{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if (Constraints{HealthCategory: []string{"low-carb"}}).IsZero() {
		t.Error("constraints with a category set should not report IsZero")
	}
	if (Constraints{MinServings: intPtr(4)}).IsZero() {
		t.Error("constraints with a bound set should not report IsZero")
	}
}
