package models

import "time"

// SensorReading represents one instant of melting-tank process variables
type SensorReading struct {
	Timestamp  time.Time `json:"timestamp"`
	MeltTemp   float64   `json:"melt_temp"`   // Melt temperature (Celsius)
	MotorSpeed float64   `json:"motorspeed"`  // Stirring motor speed (RPM)
	MeltWeight float64   `json:"melt_weight"` // Tank content weight
	Moisture   float64   `json:"insp"`        // Product moisture content
}

// Feature returns the value of a named feature column.
// Column names match the training-time feature order stored in the artifact.
func (r *SensorReading) Feature(name string) (float64, bool) {
	switch name {
	case "MELT_TEMP":
		return r.MeltTemp, true
	case "MOTORSPEED":
		return r.MotorSpeed, true
	case "MELT_WEIGHT":
		return r.MeltWeight, true
	case "INSP":
		return r.Moisture, true
	}
	return 0, false
}
