package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const packagesCacheKey = "catalog:packages"

func catalogHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/packages", func(ctx *gin.Context) {
			location := ctx.Query("location")
			if location == "" {
				if rd := lib.GetRedisClient(); rd != nil {
					if cached, err := rd.Get(context.Background(), packagesCacheKey).Result(); err == nil && cached != "" {
						var packages []models.TourPackage
						if err := json.Unmarshal([]byte(cached), &packages); err == nil {
							ctx.JSON(http.StatusOK, gin.H{"data": packages, "count": len(packages)})
							return
						}
					}
				}
			}
			db := db.GetDb()
			var packages []models.TourPackage
			q := db.Model(&models.TourPackage{}).Where("active = ?", true)
			if location != "" {
				q = q.Where("location ILIKE ?", "%"+location+"%")
			}
			if err := q.Order("title asc").Find(&packages).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if location == "" {
				if rd := lib.GetRedisClient(); rd != nil {
					if b, err := json.Marshal(&packages); err == nil {
						if err := rd.Set(context.Background(), packagesCacheKey, string(b), time.Minute).Err(); err != nil {
							log.Printf("[redis] Error caching package list: %s\n", err.Error())
						}
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": packages, "count": len(packages)})
		}).
		GET("/packages/:slug", func(ctx *gin.Context) {
			slugParam := ctx.Params.ByName("slug")
			db := db.GetDb()
			var pkg models.TourPackage
			if err := db.
				Model(&models.TourPackage{}).
				Where(&models.TourPackage{Slug: slugParam}).
				First(&pkg).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pkg})
		}).
		POST("/packages", func(ctx *gin.Context) {
			var body types.CreatePackageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
				return
			}
			pkg := models.TourPackage{
				Title:          body.Title,
				Slug:           slug.Make(body.Title),
				Location:       body.Location,
				Summary:        body.Summary,
				PricePerPerson: body.PricePerPerson,
				Currency:       body.Currency,
				DurationDays:   body.DurationDays,
				Active:         true,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&pkg).Error
			})
			if err != nil {
				log.Printf("Error creating package [%s]: %s\n", pkg.Slug, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while creating package"})
				return
			}
			if rd := lib.GetRedisClient(); rd != nil {
				if err := rd.Del(context.Background(), packagesCacheKey).Err(); err != nil {
					log.Printf("[redis] Error invalidating package cache: %s\n", err.Error())
				}
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": pkg})
		})
	return g
}
