// Package types holds the records shared by the segmentation readers,
// writers, storage backends and REST API.
package types

// DepthRatio is a read-depth ratio measured at one genomic position.
type DepthRatio struct {
	Chromosome string  `json:"chromosome"`
	Position   int     `json:"position"`
	Ratio      float64 `json:"value"`
}

// ArmSegment is one constant-mean segment of a chromosome arm. Start and End
// are the positions of its first and last points.
type ArmSegment struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	RunID      string  `gorm:"column:run_id;index" json:"-"`
	Chromosome string  `gorm:"column:chromosome" json:"chromosome"`
	Arm        string  `gorm:"column:arm" json:"arm"`
	Start      int     `gorm:"column:start_pos" json:"start"`
	End        int     `gorm:"column:end_pos" json:"end"`
	Points     int     `gorm:"column:points" json:"points"`
	Mean       float64 `gorm:"column:mean" json:"mean"`
}

// TableName sets the table used by GORM.
func (ArmSegment) TableName() string {
	return "arm_segments"
}
