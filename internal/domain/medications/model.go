package medications

type Medication struct {
	ID   int64
	Name string
}
