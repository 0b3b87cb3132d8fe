package data

import "encoding/json"

// Employee is the only resource exposed by the service; an Id of zero means
// the employee hasn't been persisted yet.
type Employee struct {
	Id        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string `json:"firstName" gorm:"column:first_name"`
	LastName  string `json:"lastName" gorm:"column:last_name"`
	Email     string `json:"email" gorm:"column:email"`
}

func (e *Employee) TableName() string {
	return TableEmployee
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
