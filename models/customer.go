package models

type Customer struct {
	ID         uint   `json:"idx" gorm:"primaryKey"`
	Prename    string `json:"prename" gorm:"size:64"`
	Name       string `json:"customer_name" gorm:"size:255;not null;index"`
	PersonID   string `json:"personid" gorm:"size:32;not null;uniqueIndex"`
	Tel        string `json:"tel" gorm:"size:64"`
	Mobile     string `json:"mobile" gorm:"size:64"`
	Address    string `json:"address"`
	Zipcode    string `json:"zipcode" gorm:"size:10"`
	Province   string `json:"province" gorm:"size:128"`
	TaxID      string `json:"taxid" gorm:"size:13;index"`
	HQ         bool   `json:"hq"`
	Branch     string `json:"branch" gorm:"size:64"`
	CreditDays int    `json:"fmlpaymentcreditday"`
}

func (Customer) TableName() string { return "customer_list" }

// BranchLabel is the branch line printed under the buyer on tax documents.
func (c Customer) BranchLabel() string {
	if c.HQ {
		return "สำนักงานใหญ่"
	}
	if c.Branch == "" {
		return ""
	}
	return "สาขาที่ " + c.Branch
}
