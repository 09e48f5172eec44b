package main

import (
	"errors"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ImageRecord is one converted image in the optional index database.
type ImageRecord struct {
	ID          uint   `gorm:"primarykey"`
	Checksum    string `gorm:"type:string;size:32;uniqueIndex"`
	SourcePath  string `gorm:"type:text"`
	DestPath    string `gorm:"type:text;index"`
	Camera      string `gorm:"type:string;size:64;index"`
	ImageType   string `gorm:"type:string;size:16"`
	Method      string `gorm:"type:string;size:16"`
	CaptureTime time.Time
	Size        int64
}

func (ImageRecord) TableName() string {
	return "images"
}

// ImageIndex is a sqlite catalogue of everything the converter has written.
// sqlite allows one writer, so inserts from the worker pool serialize on a
// mutex.
type ImageIndex struct {
	mu sync.Mutex
	db *gorm.DB
}

func OpenImageIndex(dbFile string) (*ImageIndex, error) {
	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if IsError(err) {
		return nil, err
	}
	if err := db.AutoMigrate(&ImageRecord{}); IsError(err) {
		return nil, err
	}
	return &ImageIndex{db: db}, nil
}

// Record inserts rec unless an image with the same checksum is already
// indexed.
func (ix *ImageIndex) Record(rec *ImageRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var existing ImageRecord
	result := ix.db.First(&existing, "checksum = ?", rec.Checksum)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return ix.db.Create(rec).Error
}

// Count returns the number of indexed images, used for the totals line.
func (ix *ImageIndex) Count() (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var n int64
	err := ix.db.Model(&ImageRecord{}).Count(&n).Error
	return n, err
}
