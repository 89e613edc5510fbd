package models

import (
	"time"
)

// LabDocument 实验文档表：实验讲义/原理说明，检索语料的来源
type LabDocument struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	LabID     string    `gorm:"column:lab_id;size:255;not null;index" json:"lab_id"`
	Title     string    `gorm:"column:title;size:500;not null" json:"title"`
	Source    string    `gorm:"column:source;size:500" json:"source"`
	Status    string    `gorm:"column:status;size:20;default:'active'" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (LabDocument) TableName() string {
	return "lab_documents"
}

// LabChunk 文档分块表：检索的最小单元，向量与全文索引都以它为准
type LabChunk struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	DocumentID uint      `gorm:"column:document_id;not null;index" json:"document_id"`
	ChunkIndex int       `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	VectorID   string    `gorm:"column:vector_id;size:255;index" json:"vector_id"`
	Metadata   string    `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (LabChunk) TableName() string {
	return "lab_chunks"
}

// LabImage 实验图片表：电路图/装置图等，Keywords用于正则匹配问题文本
type LabImage struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	DocumentID uint      `gorm:"column:document_id;index" json:"document_id"`
	ObjectKey  string    `gorm:"column:object_key;size:500;not null" json:"object_key"`
	Caption    string    `gorm:"column:caption;size:1000" json:"caption"`
	Keywords   string    `gorm:"column:keywords;size:1000" json:"keywords"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (LabImage) TableName() string {
	return "lab_images"
}
