package doctors

type Doctor struct {
	ID        int64
	LPUID     int64
	Name      string
	SpecID    int64
	Spec      string // название специальности для отображения
	Phone     string
	Birthdate string
}

type MainSpec struct {
	ID   int64
	Name string
}
