package entity

// Disease справочная запись об одном распознаваемом заболевании риса.
type Disease struct {
	Name           string   `json:"name" yaml:"name"`
	ScientificName string   `json:"scientificName" yaml:"scientific_name"`
	Description    string   `json:"description" yaml:"description"`
	ImageURL       string   `json:"imageUrl" yaml:"image_url"`
	Symptoms       []string `json:"symptoms" yaml:"symptoms"`
	Treatment      []string `json:"treatment" yaml:"treatment"`
}

// Clone возвращает копию записи, не разделяющую срезы с оригиналом.
func (d Disease) Clone() Disease {
	d.Symptoms = append([]string(nil), d.Symptoms...)
	d.Treatment = append([]string(nil), d.Treatment...)
	return d
}
