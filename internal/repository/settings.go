package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mphakathi/guardian/internal/types"
)

type settingModel struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (settingModel) TableName() string {
	return "settings"
}

// SettingsData is the full user configuration.
type SettingsData struct {
	UserName            string                   `json:"userName"`
	Gender              types.Gender             `json:"gender"`
	IsSurvivor          bool                     `json:"isSurvivor"`
	PIN                 string                   `json:"pin"`
	SafeWord            string                   `json:"safeWord"`
	VoiceSafeCode       *types.VoiceSafeCode     `json:"voiceSafeCode"`
	GeneralSensitivity  types.SensitivityLevel   `json:"generalSensitivity"`
	SafeCodeSensitivity types.SensitivityLevel   `json:"safeCodeSensitivity"`
	CheckInInterval     types.CheckInInterval    `json:"checkInInterval"`
	ReminderInterval    types.ReminderInterval   `json:"reminderInterval"`
	CalmAssistStyle     types.CalmAssistStyle    `json:"calmAssistStyle"`
	Contacts            []types.EmergencyContact `json:"contacts"`
}

func defaultSettings() SettingsData {
	return SettingsData{
		Gender:              types.GenderPreferNotToSay,
		GeneralSensitivity:  types.SensitivityMedium,
		SafeCodeSensitivity: types.SensitivityMedium,
		CheckInInterval:     types.CheckInNever,
		ReminderInterval:    types.ReminderNever,
		CalmAssistStyle:     types.CalmStyleSoothing,
	}
}

// SettingsRepo caches the configuration in memory and persists every write
// immediately as one JSON row per key.
type SettingsRepo struct {
	db *gorm.DB

	mu   sync.RWMutex
	data SettingsData
}

// LoadSettings reads the stored configuration, applying defaults for
// missing keys.
func LoadSettings(ctx context.Context, db *gorm.DB) (*SettingsRepo, error) {
	var rows []settingModel
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	data := defaultSettings()
	for _, row := range rows {
		if err := applySetting(&data, row.Key, row.Value); err != nil {
			return nil, fmt.Errorf("failed to decode setting %q: %w", row.Key, err)
		}
	}
	return &SettingsRepo{db: db, data: data}, nil
}

func applySetting(data *SettingsData, key, value string) error {
	targets := map[string]any{
		"userName":            &data.UserName,
		"gender":              &data.Gender,
		"isSurvivor":          &data.IsSurvivor,
		"pin":                 &data.PIN,
		"safeWord":            &data.SafeWord,
		"voiceSafeCode":       &data.VoiceSafeCode,
		"generalSensitivity":  &data.GeneralSensitivity,
		"safeCodeSensitivity": &data.SafeCodeSensitivity,
		"checkInInterval":     &data.CheckInInterval,
		"reminderInterval":    &data.ReminderInterval,
		"calmAssistStyle":     &data.CalmAssistStyle,
		"contacts":            &data.Contacts,
	}
	target, ok := targets[key]
	if !ok {
		// Unknown keys from older versions are ignored.
		return nil
	}
	return json.Unmarshal([]byte(value), target)
}

func (r *SettingsRepo) persist(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	row := settingModel{Key: key, Value: string(encoded)}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to persist setting %q: %w", key, err)
	}
	return nil
}

// Snapshot returns a copy of the full configuration.
func (r *SettingsRepo) Snapshot() SettingsData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data := r.data
	data.Contacts = append([]types.EmergencyContact(nil), r.data.Contacts...)
	return data
}

func (r *SettingsRepo) UserName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.UserName
}

func (r *SettingsRepo) Gender() types.Gender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Gender
}

func (r *SettingsRepo) IsSurvivor() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.IsSurvivor
}

func (r *SettingsRepo) PIN() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.PIN
}

func (r *SettingsRepo) SafeWord() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.SafeWord
}

func (r *SettingsRepo) VoiceSafeCode() *types.VoiceSafeCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.data.VoiceSafeCode == nil {
		return nil
	}
	code := *r.data.VoiceSafeCode
	return &code
}

func (r *SettingsRepo) GeneralSensitivity() types.SensitivityLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.GeneralSensitivity
}

func (r *SettingsRepo) SafeCodeSensitivity() types.SensitivityLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.SafeCodeSensitivity
}

func (r *SettingsRepo) CheckInInterval() types.CheckInInterval {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.CheckInInterval
}

func (r *SettingsRepo) ReminderInterval() types.ReminderInterval {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.ReminderInterval
}

func (r *SettingsRepo) CalmAssistStyle() types.CalmAssistStyle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.CalmAssistStyle
}

func (r *SettingsRepo) Contacts() []types.EmergencyContact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.EmergencyContact(nil), r.data.Contacts...)
}

func (r *SettingsRepo) SetUserName(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.UserName = name
	return r.persist(ctx, "userName", name)
}

func (r *SettingsRepo) SetGender(ctx context.Context, gender types.Gender) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Gender = gender
	return r.persist(ctx, "gender", gender)
}

func (r *SettingsRepo) SetIsSurvivor(ctx context.Context, isSurvivor bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.IsSurvivor = isSurvivor
	return r.persist(ctx, "isSurvivor", isSurvivor)
}

func (r *SettingsRepo) SetPIN(ctx context.Context, pin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.PIN = pin
	return r.persist(ctx, "pin", pin)
}

func (r *SettingsRepo) SetSafeWord(ctx context.Context, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.SafeWord = word
	return r.persist(ctx, "safeWord", word)
}

func (r *SettingsRepo) SetVoiceSafeCode(ctx context.Context, code *types.VoiceSafeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.VoiceSafeCode = code
	return r.persist(ctx, "voiceSafeCode", code)
}

func (r *SettingsRepo) SetGeneralSensitivity(ctx context.Context, level types.SensitivityLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.GeneralSensitivity = level
	return r.persist(ctx, "generalSensitivity", level)
}

func (r *SettingsRepo) SetSafeCodeSensitivity(ctx context.Context, level types.SensitivityLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.SafeCodeSensitivity = level
	return r.persist(ctx, "safeCodeSensitivity", level)
}

func (r *SettingsRepo) SetCheckInInterval(ctx context.Context, interval types.CheckInInterval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.CheckInInterval = interval
	return r.persist(ctx, "checkInInterval", interval)
}

func (r *SettingsRepo) SetReminderInterval(ctx context.Context, interval types.ReminderInterval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.ReminderInterval = interval
	return r.persist(ctx, "reminderInterval", interval)
}

func (r *SettingsRepo) SetCalmAssistStyle(ctx context.Context, style types.CalmAssistStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.CalmAssistStyle = style
	return r.persist(ctx, "calmAssistStyle", style)
}

func (r *SettingsRepo) SetContacts(ctx context.Context, contacts []types.EmergencyContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Contacts = append([]types.EmergencyContact(nil), contacts...)
	return r.persist(ctx, "contacts", contacts)
}
