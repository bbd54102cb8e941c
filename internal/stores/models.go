package stores

import (
	"time"

	"github.com/MrEthical07/fittrack"
)

// Gender is the self-declared gender of a user.
type Gender string

// Gender values.
const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ActivityLevel is the everyday activity of a user.
type ActivityLevel string

// ActivityLevel values.
const (
	ActivitySedentary ActivityLevel = "SEDENTARY"
	ActivityLight     ActivityLevel = "LIGHT"
	ActivityModerate  ActivityLevel = "MODERATE"
	ActivityActive    ActivityLevel = "ACTIVE"
	ActivityExtreme   ActivityLevel = "EXTREME"
)

// WeightSource tells how a weight entry was recorded.
type WeightSource string

// WeightSource values.
const (
	WeightSourceManual        WeightSource = "MANUAL"
	WeightSourceProgress      WeightSource = "PROGRESS"
	WeightSourceProfileUpdate WeightSource = "PROFILE_UPDATE"
)

// User is a row of the users table.  Password holds the scrypt hash and is
// never serialized.
type User struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string            `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Name          string            `gorm:"size:100;not null" json:"name"`
	LastName      string            `gorm:"size:100;not null" json:"lastName"`
	Password      string            `gorm:"column:password;not null" json:"-"`
	Type          fittrack.UserType `gorm:"size:8;not null;default:USER" json:"type"`
	Email         string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Height        *float64          `json:"height"`
	Weight        *float64          `json:"weight"`
	TargetWeight  *float64          `json:"targetWeight"`
	Country       string            `gorm:"size:100" json:"country,omitempty"`
	City          string            `gorm:"size:100" json:"city,omitempty"`
	Phone         string            `gorm:"size:32" json:"phone,omitempty"`
	Occupation    string            `gorm:"size:100" json:"occupation,omitempty"`
	DateOfBirth   *time.Time        `json:"dateOfBirth"`
	Gender        Gender            `gorm:"size:8" json:"gender,omitempty"`
	ActivityLevel ActivityLevel     `gorm:"size:16" json:"activityLevel,omitempty"`
	FirstLogin    bool              `gorm:"not null;default:true" json:"firstLogin"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// TableName implements the gorm tabler interface for User.
func (User) TableName() string { return "users" }

// Food is a row of the foods table.  Nutrients are per serving.
type Food struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Brand       string    `gorm:"size:255" json:"brand,omitempty"`
	Category    string    `gorm:"size:100;index" json:"category,omitempty"`
	ServingSize float64   `gorm:"not null" json:"servingSize"`
	ServingUnit string    `gorm:"size:16;not null" json:"servingUnit"`
	Calories    float64   `gorm:"not null" json:"calories"`
	Protein     float64   `gorm:"not null" json:"protein"`
	Fat         float64   `gorm:"not null" json:"fat"`
	Carbs       float64   `gorm:"not null" json:"carbs"`
	Picture     string    `json:"picture,omitempty"`
	Barcode     *string   `gorm:"size:64;uniqueIndex" json:"barcode"`
	Verified    bool      `gorm:"not null;default:false" json:"verified"`
	CreatedBy   int64     `gorm:"index;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Creator User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName implements the gorm tabler interface for Food.
func (Food) TableName() string { return "foods" }

// Exercise is a row of the exercises table.
type Exercise struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:300;uniqueIndex;not null" json:"name"`
	Notes       string    `gorm:"size:400" json:"notes,omitempty"`
	Alternative string    `gorm:"size:100" json:"alternative,omitempty"`
	Video       string    `json:"video,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName implements the gorm tabler interface for Exercise.
func (Exercise) TableName() string { return "exercises" }

// WeightEntry is a row of the weight_history table.
type WeightEntry struct {
	ID     int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64        `gorm:"index:idx_weight_user_date,priority:1;not null" json:"userId"`
	Weight float64      `gorm:"not null" json:"weight"`
	Date   time.Time    `gorm:"index:idx_weight_user_date,priority:2;not null" json:"date"`
	Source WeightSource `gorm:"size:16;not null;default:MANUAL" json:"source"`
	Notes  string       `json:"notes,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName implements the gorm tabler interface for WeightEntry.
func (WeightEntry) TableName() string { return "weight_history" }

// Workout is a row of the workouts table.  Duration is in minutes.
type Workout struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64     `gorm:"index;not null" json:"userId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Date           time.Time `gorm:"index;not null" json:"date"`
	Duration       int       `json:"duration"`
	CaloriesBurned float64   `json:"caloriesBurned"`
	Notes          string    `json:"notes,omitempty"`
	Rating         *int      `json:"rating"`
	Completed      bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName implements the gorm tabler interface for Workout.
func (Workout) TableName() string { return "workouts" }
