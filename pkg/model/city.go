// pkg/model/city.go
package model

// City is an entry of the reference city table.
type City struct {
	Name      string  `yaml:"name" json:"name"`
	Latitude  float64 `yaml:"lat" json:"latitude"`
	Longitude float64 `yaml:"lng" json:"longitude"`
}
