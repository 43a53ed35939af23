package models

// Node is implemented by every entity reachable through a global id.
type Node interface {
	IsNode()
}

func (*Person) IsNode()  {}
func (*Film) IsNode()    {}
func (*Planet) IsNode()  {}
func (*Species) IsNode() {}
