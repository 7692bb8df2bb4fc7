package scaffold

import "text/template"

// Pinned package versions for generated test projects. These track the
// current stable releases; users bump them with their normal tooling.
var defaultPackages = map[string]string{
	"Microsoft.NET.Test.Sdk":    "17.9.0",
	"xunit":                     "2.7.0",
	"xunit.runner.visualstudio": "2.5.7",
	"NUnit":                     "4.1.0",
	"NUnit3TestAdapter":         "4.5.0",
	"MSTest.TestFramework":      "3.2.2",
	"MSTest.TestAdapter":        "3.2.2",
	"Moq":                       "4.20.70",
	"NSubstitute":               "5.1.0",
	"FluentAssertions":          "6.12.0",
	"AutoFixture":               "4.18.1",
	"coverlet.collector":        "6.0.2",
}

var csprojTemplate = template.Must(template.New("csproj").Parse(
	`<Project Sdk="Microsoft.NET.Sdk">

  <PropertyGroup>
    <TargetFramework>{{.TargetFramework}}</TargetFramework>
    <ImplicitUsings>enable</ImplicitUsings>
    <Nullable>enable</Nullable>
    <IsPackable>false</IsPackable>
    <IsTestProject>true</IsTestProject>
  </PropertyGroup>

  <ItemGroup>
{{- range .Packages}}
    <PackageReference Include="{{.Name}}" Version="{{.Version}}" />
{{- end}}
  </ItemGroup>

  <ItemGroup>
    <ProjectReference Include="{{.ProjectReference}}" />
  </ItemGroup>

</Project>
`))

var globalUsingsTemplate = template.Must(template.New("usings").Parse(
	`global using {{.TestUsing}};
{{- if .HasMoq}}
global using Moq;
{{- end}}
{{- if .HasFluentAssertions}}
global using FluentAssertions;
{{- end}}
{{- if .HasAutoFixture}}
global using AutoFixture;
{{- end}}
`))

// testClassTemplate emits an arrange-act-assert skeleton with one mock field
// per constructor dependency and a CreateSut helper wiring them together.
// Attributes and assertions follow the detected framework.
var testClassTemplate = template.Must(template.New("testclass").Parse(
	`namespace {{.Namespace}};

{{if .ClassAttribute}}[{{.ClassAttribute}}]
{{end}}public class {{.ClassName}}Tests
{
{{- range .Deps}}
    private readonly Mock<{{.Type}}> _{{.FieldName}}Mock = new();
{{- end}}

    private {{.ClassName}} CreateSut() =>
        new({{range $i, $d := .Deps}}{{if $i}}, {{end}}_{{$d.FieldName}}Mock.Object{{end}});

{{- range .Methods}}

    [{{$.TestAttribute}}]
    public void {{.}}_WhenCalled_BehavesAsExpected()
    {
        // Arrange
        var sut = CreateSut();

        // Act
        // TODO: call sut.{{.}} and capture the result.

        // Assert
        {{$.NotNullAssert}}
    }
{{- end}}
{{- if not .Methods}}

    [{{.TestAttribute}}]
    public void CreateSut_ReturnsInstance()
    {
        var sut = CreateSut();

        {{.NotNullAssert}}
    }
{{- end}}
}
`))

// testClassPlainTemplate is the no-mock variant used when the subject has no
// constructor dependencies or Moq is not part of the stack.
var testClassPlainTemplate = template.Must(template.New("testclass-plain").Parse(
	`namespace {{.Namespace}};

{{if .ClassAttribute}}[{{.ClassAttribute}}]
{{end}}public class {{.ClassName}}Tests
{
{{- range .Methods}}
    [{{$.TestAttribute}}]
    public void {{.}}_WhenCalled_BehavesAsExpected()
    {
        // Arrange
        var sut = new {{$.ClassName}}();

        // Act
        // TODO: call sut.{{.}} and capture the result.

        // Assert
        {{$.NotNullAssert}}
    }

{{- end}}
{{- if not .Methods}}
    [{{.TestAttribute}}]
    public void Constructor_ReturnsInstance()
    {
        var sut = new {{.ClassName}}();

        {{.NotNullAssert}}
    }
{{- end}}
}
`))
