package bimap_test

import (
	"fmt"

	"github.com/matzehuels/mealyetf/pkg/bimap"
)

func ExampleIndexMap() {
	m := bimap.New[string](10)
	fmt.Println(m.IDOf("on"), m.IDOf("off"), m.IDOf("on"))

	key, _ := m.KeyOf(11)
	fmt.Println(key)

	_, err := m.KeyOf(12)
	fmt.Println(err)
	// Output:
	// 10 11 10
	// off
	// bimap: id 12 not allocated (valid range [10, 12))
}
