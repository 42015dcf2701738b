package geo

type District struct {
	ID     int64
	Name   string
	Region string
}

type Road struct {
	ID         int64
	DistrictID int64
	Num        int
}

// FacilityKind различает ЛПУ (поликлиники/больницы) и аптечные точки.
type FacilityKind string

const (
	KindLPU        FacilityKind = "lpu"
	KindApothecary FacilityKind = "apothecary"
)

type Facility struct {
	ID     int64
	RoadID int64
	Name   string
	URL    string
	Kind   FacilityKind
}
