package models

type MaintenanceInfo struct {
	IsUnderMaintenance bool   `json:"isUnderMaintenance"`
	Message            string `json:"message"`
	StartTime          string `json:"startTime,omitempty"`
	ExpectedEndTime    string `json:"expectedEndTime,omitempty"`
}
