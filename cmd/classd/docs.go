package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           classd API
// @version         1.0
// @description     HTTP gateway classifying PDFs and URLs as research publications.
//
// @contact.name   classd maintainers
// @contact.url    https://github.com/your-org/classd
//
// @license.name   Apache 2.0
// @license.url    https://www.apache.org/licenses/LICENSE-2.0
//
// @BasePath  /
//
// @schemes http
