package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	Update(c *model.Campaign) error
	UpdateStatus(campaignID, status string) error
	Delete(id string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusPending
	}

	configJSON, err := json.Marshal(c.Config)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO campaigns (id, config, status, error_message, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = r.DB.Exec(query, c.ID, configJSON, c.Status, c.ErrorMessage, c.CreatedAt)
	return err
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	configJSON, err := json.Marshal(c.Config)
	if err != nil {
		return err
	}
	contentJSON, err := marshalNullable(c.GeneratedContent)
	if err != nil {
		return err
	}
	urlsJSON, err := marshalNullable(c.PublishedURLs)
	if err != nil {
		return err
	}
	analyticsJSON, err := marshalNullable(c.Analytics)
	if err != nil {
		return err
	}

	query := `
        UPDATE campaigns
        SET config=$1, status=$2, error_message=$3, generated_content=$4, published_urls=$5, analytics=$6, updated_at=NOW()
        WHERE id=$7
    `
	_, err = r.DB.Exec(query, configJSON, c.Status, c.ErrorMessage, contentJSON, urlsJSON, analyticsJSON, c.ID)
	return err
}

func (r *CampaignRepository) UpdateStatus(campaignID, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
        SELECT id, config, status, error_message, generated_content, published_urls, analytics, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT id, config, status, error_message, generated_content, published_urls, analytics, created_at, updated_at FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

// ====================== Scan helpers ======================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var configJSON []byte
	var contentJSON, urlsJSON, analyticsJSON sql.NullString

	err := row.Scan(&c.ID, &configJSON, &c.Status, &c.ErrorMessage, &contentJSON, &urlsJSON, &analyticsJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(configJSON, &c.Config); err != nil {
		return nil, fmt.Errorf("corrupt campaign config for %s: %w", c.ID, err)
	}
	if contentJSON.Valid && contentJSON.String != "" {
		c.GeneratedContent = &model.ContentResult{}
		if err := json.Unmarshal([]byte(contentJSON.String), c.GeneratedContent); err != nil {
			return nil, fmt.Errorf("corrupt generated content for %s: %w", c.ID, err)
		}
	}
	if urlsJSON.Valid && urlsJSON.String != "" {
		if err := json.Unmarshal([]byte(urlsJSON.String), &c.PublishedURLs); err != nil {
			return nil, fmt.Errorf("corrupt published urls for %s: %w", c.ID, err)
		}
	}
	if analyticsJSON.Valid && analyticsJSON.String != "" {
		if err := json.Unmarshal([]byte(analyticsJSON.String), &c.Analytics); err != nil {
			return nil, fmt.Errorf("corrupt analytics for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func marshalNullable(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case *model.ContentResult:
		if val == nil {
			return nil, nil
		}
	case map[string]string:
		if val == nil {
			return nil, nil
		}
	case map[string]interface{}:
		if val == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
