package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
)

// SwaggerRoutes serves the OpenAPI document and its UI under /swagger,
// behind guard
func SwaggerRoutes(guard gin.HandlerFunc) RouteRegistrar {
	docs := NewDomainGroup("swagger", "/swagger").Use(guard)
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return docs
}

// DocsGenerated reports whether a swag-generated document is linked into
// the binary. Without one /swagger/doc.json answers 500.
func DocsGenerated() bool {
	_, err := swag.ReadDoc()
	return err == nil
}
