package clinic

import (
	"errors"
	"fmt"
)

// Catalog holds the reference art per zone and condition type, indexed
// [zone][type] in priority and column order. An empty Appearance marks a
// missing entry. Rows may be short or missing when content is incomplete.
type Catalog [][]Appearance

// NewCatalog returns a full-size catalog with no entries.
func NewCatalog() Catalog {
	c := make(Catalog, zoneCount)
	for i := range c {
		c[i] = make([]Appearance, conditionTypeCount)
	}
	return c
}

// FullCatalog returns a catalog with a placeholder appearance for every
// zone and type, including wrinkles on the chin.
func FullCatalog() Catalog {
	c := NewCatalog()
	for _, z := range AllZones {
		for _, t := range AllConditionTypes {
			c[z][t] = Appearance(fmt.Sprintf("%s_%s", t, z))
		}
	}
	return c
}

// Set stores the appearance for (zone, type), growing rows as needed.
func (c *Catalog) Set(zone Zone, typ ConditionType, a Appearance) {
	if !zone.Valid() || !typ.Valid() {
		return
	}
	for len(*c) <= int(zone) {
		*c = append(*c, nil)
	}
	row := (*c)[zone]
	for len(row) <= int(typ) {
		row = append(row, "")
	}
	row[typ] = a
	(*c)[zone] = row
}

// Lookup returns the appearance for (zone, type) and whether the catalog
// actually has art for it.
func (c Catalog) Lookup(zone Zone, typ ConditionType) (Appearance, bool) {
	zi, ti := int(zone), int(typ)
	if zi < 0 || zi >= len(c) || c[zi] == nil {
		return "", false
	}
	if ti < 0 || ti >= len(c[zi]) {
		return "", false
	}
	a := c[zi][ti]
	return a, a != ""
}

// CatalogFromNames builds a catalog from asset names whose text encodes
// type and zone ("acne_frente", "Arrugas-Mejillas-02"). Names that cannot be
// parsed are skipped and recorded in diag. When two names map to the same
// slot the first one wins.
func CatalogFromNames(names []string, diag *DiagLog) Catalog {
	c := NewCatalog()
	for _, name := range names {
		sc, err := ParseSkinCondition(name)
		if err != nil {
			key := "malformed_name"
			if errors.Is(err, ErrUnknownZone) {
				key = "unknown_zone"
			}
			diag.Add("catalog", key, err.Error(), 0)
			continue
		}
		if _, taken := c.Lookup(sc.Zone(), sc.Type()); taken {
			diag.Add("catalog", "duplicate", fmt.Sprintf("%s: %q ignored", sc, name), 0)
			continue
		}
		c.Set(sc.Zone(), sc.Type(), sc.Appearance())
	}
	return c
}
