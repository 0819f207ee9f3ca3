// Package pif implements the subset of the Physical Information File (PIF)
// record format that the citrine client uploads and searches: chemical
// systems with named properties, scalar values with uncertainties,
// references, and preparation steps.
package pif

import (
	"github.com/citrinelab/citrine/pkg/errors"
)

// Category strings used on the wire.
const (
	CategorySystem   = "system"
	CategoryChemical = "system.chemical"
)

// System is the generic PIF record: a named physical system with measured
// or computed properties.
type System struct {
	Category        string           `json:"category,omitempty"`
	UID             string           `json:"uid,omitempty"`
	Names           []string         `json:"names,omitempty"`
	IDs             []ID             `json:"ids,omitempty"`
	Source          *Source          `json:"source,omitempty"`
	Properties      []Property       `json:"properties,omitempty"`
	References      []Reference      `json:"references,omitempty"`
	Preparation     []ProcessStep    `json:"preparation,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
}

// ChemicalSystem is a System with a chemical formula and optional
// elemental composition. It is the record type everything in this module
// produces and consumes.
type ChemicalSystem struct {
	System
	ChemicalFormula string        `json:"chemicalFormula,omitempty"`
	Composition     []Composition `json:"composition,omitempty"`
}

// NewChemicalSystem creates a chemical system with the wire category set.
func NewChemicalSystem(formula string) *ChemicalSystem {
	return &ChemicalSystem{
		System:          System{Category: CategoryChemical},
		ChemicalFormula: formula,
	}
}

// Composition is one element's share of a chemical system.
type Composition struct {
	Element       string  `json:"element"`
	AtomicPercent *Scalar `json:"atomicPercent,omitempty"`
	WeightPercent *Scalar `json:"weightPercent,omitempty"`
}

// Property is a named measured or computed quantity attached to a system.
type Property struct {
	Name       string      `json:"name"`
	Scalars    []Scalar    `json:"scalars,omitempty"`
	Units      string      `json:"units,omitempty"`
	Conditions []Value     `json:"conditions,omitempty"`
	Methods    []Method    `json:"methods,omitempty"`
	DataType   string      `json:"dataType,omitempty"`
	References []Reference `json:"references,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

// Value is a named quantity used for conditions and process step details.
type Value struct {
	Name    string   `json:"name"`
	Scalars []Scalar `json:"scalars,omitempty"`
	Units   string   `json:"units,omitempty"`
}

// Method describes how a property was obtained.
type Method struct {
	Name string `json:"name,omitempty"`
}

// ID is an alternate identifier for a system.
type ID struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// Classification labels a system with a named taxonomy value, for example
// a crystal structure family.
type Classification struct {
	Name  string   `json:"name,omitempty"`
	Value string   `json:"value,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Source identifies who produced a record.
type Source struct {
	Producer string `json:"producer,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Reference is a literature citation.
type Reference struct {
	Citation string `json:"citation,omitempty"`
	DOI      string `json:"doi,omitempty"`
	URL      string `json:"url,omitempty"`
}

// ProcessStep is one step of a preparation route.
type ProcessStep struct {
	Name    string  `json:"name,omitempty"`
	Details []Value `json:"details,omitempty"`
}

// AddProperty appends a numeric property with optional units.
func (s *ChemicalSystem) AddProperty(name string, value float64, units string) {
	s.Properties = append(s.Properties, Property{
		Name:    name,
		Scalars: []Scalar{NewScalar(value)},
		Units:   units,
	})
}

// AddStringProperty appends a non-numeric property (e.g. crystallinity
// class) with optional units.
func (s *ChemicalSystem) AddStringProperty(name, value, units string) {
	s.Properties = append(s.Properties, Property{
		Name:    name,
		Scalars: []Scalar{NewStringScalar(value)},
		Units:   units,
	})
}

// Property returns the first property with the given name.
func (s *System) Property(name string) (*Property, bool) {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			return &s.Properties[i], true
		}
	}
	return nil, false
}

// NumericValue returns the property's first scalar as a number. It fails on
// properties with no scalars or a non-numeric first scalar.
func (p *Property) NumericValue() (float64, error) {
	if len(p.Scalars) == 0 {
		return 0, errors.NewValueError("Property.NumericValue", "property "+p.Name+" has no scalars")
	}
	if !p.Scalars[0].IsNumeric() {
		return 0, errors.NewValueError("Property.NumericValue", "property "+p.Name+" is not numeric")
	}
	return p.Scalars[0].Number(), nil
}
