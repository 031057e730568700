package staff

type Staff struct {
	Id     int
	Name   string
	Role   string
	Active bool
}
